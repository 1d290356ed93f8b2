package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/tier"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, rule *MarginRule) error
	Update(ctx context.Context, db *gorm.DB, rule *MarginRule) error
	FindByID(ctx context.Context, db *gorm.DB, koperasiID, id snowflake.ID) (*MarginRule, error)
	ListByKoperasi(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID) ([]MarginRule, error)
	// FindActive returns the winning rule for (koperasi, tier) as of the
	// given time: active, effective_from <= asOf, latest effective_from,
	// ties broken by latest creation. Nil when no rule applies.
	FindActive(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID, t tier.Tier, asOf time.Time) (*MarginRule, error)
}

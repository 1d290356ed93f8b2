package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, app *Application) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	HasPending(ctx context.Context, db *gorm.DB, userID, koperasiID snowflake.ID) (bool, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Application, error)
	ListByKoperasi(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID, status *Status, page pagination.Pagination) ([]*Application, error)
	ListActiveByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Application, error)
	// Transition performs the guarded status update. It returns the
	// number of rows changed: zero means the application was no longer
	// in the expected state, which is how concurrent decisions lose.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, decidedBy snowflake.ID, decidedAt time.Time) (int64, error)
}

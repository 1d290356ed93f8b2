package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/tier"
)

// Service manages margin rules for a koperasi. Writes are owner-only
// and enforce the tier hierarchy invariant; reads tolerate historical
// rule sets written before the invariant existed.
type Service interface {
	Create(ctx context.Context, actor *claims.Claims, req CreateRequest) (*Response, error)
	Update(ctx context.Context, actor *claims.Claims, req UpdateRequest) (*Response, error)
	List(ctx context.Context, actor *claims.Claims, koperasiID string) ([]Response, error)
	GetActiveRule(ctx context.Context, koperasiID snowflake.ID, t tier.Tier, asOf time.Time) (*MarginRule, error)
}

type CreateRequest struct {
	KoperasiID    string     `json:"koperasi_id"`
	Tier          tier.Tier  `json:"tier"`
	Type          RuleType   `json:"type"`
	Value         float64    `json:"value"`
	EffectiveFrom *time.Time `json:"effective_from"`
}

type UpdateRequest struct {
	ID         string    `json:"id"`
	KoperasiID string    `json:"koperasi_id"`
	Value      *float64  `json:"value"`
	IsActive   *bool     `json:"is_active"`
}

type Response struct {
	ID            string    `json:"id"`
	KoperasiID    string    `json:"koperasi_id"`
	Tier          tier.Tier `json:"tier"`
	Type          RuleType  `json:"type"`
	Value         float64   `json:"value"`
	IsActive      bool      `json:"is_active"`
	EffectiveFrom time.Time `json:"effective_from"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

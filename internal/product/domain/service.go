package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sentrakoop/sentra/internal/claims"
)

// Service manages a koperasi's catalog. Reads are public; writes are
// reserved for koperasi owners.
type Service interface {
	Create(ctx context.Context, actor *claims.Claims, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, koperasiID, id string) (*Response, error)
	Update(ctx context.Context, actor *claims.Claims, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, actor *claims.Claims, koperasiID, id string) (*Response, error)
}

type ListRequest struct {
	KoperasiID string
	Name       string
	Category   string
	Active     *bool
	SortBy     string
	OrderBy    string
}

type CreateRequest struct {
	KoperasiID  string         `json:"koperasi_id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description *string        `json:"description"`
	BasePrice   int64          `json:"base_price"`
	Stock       int64          `json:"stock"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string         `json:"id"`
	KoperasiID  string         `json:"koperasi_id"`
	Name        *string        `json:"name"`
	Category    *string        `json:"category"`
	Description *string        `json:"description"`
	BasePrice   *int64         `json:"base_price"`
	Stock       *int64         `json:"stock"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type Response struct {
	ID          string         `json:"id"`
	KoperasiID  string         `json:"koperasi_id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Category    string         `json:"category,omitempty"`
	Description *string        `json:"description,omitempty"`
	BasePrice   int64          `json:"base_price"`
	Stock       int64          `json:"stock"`
	Active      bool           `json:"active"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidKoperasi  = errors.New("invalid_koperasi")
	ErrInvalidCode      = errors.New("invalid_code")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidBasePrice = errors.New("invalid_base_price")
	ErrInvalidStock     = errors.New("invalid_stock")
	ErrDuplicateCode    = errors.New("duplicate_code")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrForbidden        = errors.New("forbidden")
)

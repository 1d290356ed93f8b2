package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/tier"
)

// Service is the storefront read model. It resolves the caller's tier
// for a koperasi and returns the catalog priced for that tier; it
// never exposes another tier's price to the caller.
type Service interface {
	Browse(ctx context.Context, actor *claims.Claims, req BrowseRequest) (*BrowseResponse, error)
	// PriceMatrix prices the whole catalog for every tier at once. It
	// is an owner-facing view backing the exported price list.
	PriceMatrix(ctx context.Context, actor *claims.Claims, koperasiID string) (*Matrix, error)
}

type BrowseRequest struct {
	KoperasiID string
	Name       string
	Category   string
	SortBy     string
	OrderBy    string
}

type Entry struct {
	ProductID  string `json:"product_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	BasePrice  int64  `json:"base_price"`
	FinalPrice int64  `json:"final_price"`
	Stock      int64  `json:"stock"`
}

type BrowseResponse struct {
	KoperasiID string    `json:"koperasi_id"`
	Tier       tier.Tier `json:"tier"`
	AsOf       time.Time `json:"as_of"`
	Items      []Entry   `json:"items"`
}

// MatrixRow carries one product's price at each tier, keyed by tier in
// ascending privilege order.
type MatrixRow struct {
	ProductID string              `json:"product_id"`
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	BasePrice int64               `json:"base_price"`
	Prices    map[tier.Tier]int64 `json:"prices"`
}

type Matrix struct {
	KoperasiID   string      `json:"koperasi_id"`
	KoperasiName string      `json:"koperasi_name"`
	AsOf         time.Time   `json:"as_of"`
	Rows         []MatrixRow `json:"rows"`
}

var (
	ErrInvalidKoperasi = errors.New("invalid_koperasi")
	ErrNotFound        = errors.New("not_found")
	ErrForbidden       = errors.New("forbidden")
)

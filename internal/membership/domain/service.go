package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/pkg/db/pagination"
)

// Service drives the membership application state machine:
// PENDING -> ACTIVE | REJECTED, both terminal. A fresh Apply is the only
// way back in after a terminal decision.
type Service interface {
	Apply(ctx context.Context, actor *claims.Claims, req ApplyRequest) (*Response, error)
	Decide(ctx context.Context, actor *claims.Claims, req DecideRequest) (*Response, error)
	ListByUser(ctx context.Context, actor *claims.Claims) ([]Response, error)
	ListByKoperasi(ctx context.Context, actor *claims.Claims, req ListByKoperasiRequest) (*ListResponse, error)
	// ActiveByUser returns the membership facts the tier resolver reads.
	ActiveByUser(ctx context.Context, userID snowflake.ID) ([]Application, error)
}

type ApplyRequest struct {
	KoperasiID string `json:"koperasi_id"`
	Kind       Kind   `json:"kind"`
}

type DecideRequest struct {
	ID       string   `json:"id"`
	Decision Decision `json:"decision"`
}

type ListByKoperasiRequest struct {
	KoperasiID string
	Status     *Status
	PageToken  string
	PageSize   int
}

type ListResponse struct {
	Applications []Response          `json:"applications"`
	PageInfo     pagination.PageInfo `json:"page_info"`
}

type Response struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	UserID     string     `json:"user_id"`
	KoperasiID string     `json:"koperasi_id"`
	Kind       Kind       `json:"kind"`
	Status     Status     `json:"status"`
	DecidedBy  *string    `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidKoperasi      = errors.New("invalid_koperasi")
	ErrInvalidKind          = errors.New("invalid_kind")
	ErrInvalidDecision      = errors.New("invalid_decision")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("not_found")
	ErrForbidden            = errors.New("forbidden")
	ErrDuplicateApplication = errors.New("duplicate_application")
	ErrInvalidTransition    = errors.New("invalid_transition")
)

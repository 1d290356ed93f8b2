package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
	"gorm.io/datatypes"
)

type Service interface {
	Create(ctx context.Context, actor *claims.Claims, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetBySlug(ctx context.Context, slug string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, actor *claims.Claims, req UpdateRequest) (*Response, error)
	// OwnershipsByUser returns the ownership facts the claims builder reads.
	OwnershipsByUser(ctx context.Context, userID snowflake.ID) ([]claims.Ownership, error)
}

type CreateRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

type UpdateRequest struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
}

type Response struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	IsActive    bool              `json:"is_active"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrForbidden    = errors.New("forbidden")
	ErrSlugConflict = errors.New("slug_conflict")
)

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, k *Koperasi) error
	Update(ctx context.Context, db *gorm.DB, k *Koperasi) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Koperasi, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Koperasi, error)
	List(ctx context.Context, db *gorm.DB) ([]Koperasi, error)
	AddOwner(ctx context.Context, db *gorm.DB, o *Owner) error
	ListOwnersByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Owner, error)
}

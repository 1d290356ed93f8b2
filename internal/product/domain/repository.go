package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, koperasiID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID, filter ListRequest) ([]Product, error)
	// AverageBasePrice returns the mean base price of active products,
	// or 0 when the catalog is empty.
	AverageBasePrice(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID) (int64, error)
}

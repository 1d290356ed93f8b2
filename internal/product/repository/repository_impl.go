package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/pkg/db/option"
	"gorm.io/gorm"
)

var sortableColumns = map[string]bool{
	"name":       true,
	"code":       true,
	"category":   true,
	"base_price": true,
	"created_at": true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, koperasi_id, code, name, category, description, base_price, stock, active, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.KoperasiID,
		product.Code,
		product.Name,
		product.Category,
		product.Description,
		product.BasePrice,
		product.Stock,
		product.Active,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, category = ?, description = ?, base_price = ?, stock = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE koperasi_id = ? AND id = ?`,
		product.Name,
		product.Category,
		product.Description,
		product.BasePrice,
		product.Stock,
		product.Active,
		product.Metadata,
		product.UpdatedAt,
		product.KoperasiID,
		product.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, koperasiID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Where("koperasi_id = ? AND id = ?", koperasiID, id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID, filter domain.ListRequest) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Where("koperasi_id = ?", koperasiID)

	if name := strings.TrimSpace(filter.Name); name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	clause := option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortableColumns)
	if clause == "" {
		clause = "created_at DESC"
	}
	stmt = option.WithSortBy(clause).Apply(stmt)

	var products []domain.Product
	if err := stmt.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) AverageBasePrice(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID) (int64, error) {
	var avg *float64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("AVG(base_price)").
		Where("koperasi_id = ? AND active = ?", koperasiID, true).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return int64(*avg + 0.5), nil
}

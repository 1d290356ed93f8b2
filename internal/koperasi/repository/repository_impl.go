package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/koperasi/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, k *domain.Koperasi) error {
	return db.WithContext(ctx).Create(k).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, k *domain.Koperasi) error {
	if k == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE koperasi
		 SET name = ?, description = ?, is_active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		k.Name,
		k.Description,
		k.IsActive,
		k.Metadata,
		k.UpdatedAt,
		k.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Koperasi, error) {
	var k domain.Koperasi
	err := db.WithContext(ctx).Where("id = ?", id).First(&k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &k, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Koperasi, error) {
	var k domain.Koperasi
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &k, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Koperasi, error) {
	var items []domain.Koperasi
	err := db.WithContext(ctx).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AddOwner(ctx context.Context, db *gorm.DB, o *domain.Owner) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO koperasi_owners (id, koperasi_id, user_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.KoperasiID,
		o.UserID,
		o.IsActive,
		o.CreatedAt,
		o.UpdatedAt,
	).Error
}

func (r *repo) ListOwnersByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Owner, error) {
	var owners []domain.Owner
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

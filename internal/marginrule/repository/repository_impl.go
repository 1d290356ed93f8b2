package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/marginrule/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, rule *domain.MarginRule) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO margin_rules (id, koperasi_id, tier, type, value, is_active, effective_from, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.KoperasiID,
		rule.Tier,
		rule.Type,
		rule.Value,
		rule.IsActive,
		rule.EffectiveFrom,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *domain.MarginRule) error {
	if rule == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE margin_rules
		 SET value = ?, is_active = ?, updated_at = ?
		 WHERE koperasi_id = ? AND id = ?`,
		rule.Value,
		rule.IsActive,
		rule.UpdatedAt,
		rule.KoperasiID,
		rule.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, koperasiID, id snowflake.ID) (*domain.MarginRule, error) {
	var rule domain.MarginRule
	err := db.WithContext(ctx).
		Where("koperasi_id = ? AND id = ?", koperasiID, id).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) ListByKoperasi(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID) ([]domain.MarginRule, error) {
	var rules []domain.MarginRule
	err := db.WithContext(ctx).
		Where("koperasi_id = ?", koperasiID).
		Order("tier ASC, effective_from DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID, t tier.Tier, asOf time.Time) (*domain.MarginRule, error) {
	var rule domain.MarginRule
	err := db.WithContext(ctx).
		Where("koperasi_id = ? AND tier = ? AND is_active = ? AND effective_from <= ?", koperasiID, t, true, asOf).
		Order("effective_from DESC, created_at DESC, id DESC").
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

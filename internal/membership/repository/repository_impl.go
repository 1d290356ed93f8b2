package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/membership/domain"
	"github.com/sentrakoop/sentra/pkg/db/option"
	"github.com/sentrakoop/sentra/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO membership_applications (id, code, user_id, koperasi_id, kind, status, decided_by, decided_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID,
		app.Code,
		app.UserID,
		app.KoperasiID,
		app.Kind,
		app.Status,
		app.DecidedBy,
		app.DecidedAt,
		app.CreatedAt,
		app.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	var app domain.Application
	err := db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *repo) HasPending(ctx context.Context, db *gorm.DB, userID, koperasiID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("user_id = ? AND koperasi_id = ? AND status = ?", userID, koperasiID, domain.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Application, error) {
	var apps []domain.Application
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) ListByKoperasi(ctx context.Context, db *gorm.DB, koperasiID snowflake.ID, status *domain.Status, page pagination.Pagination) ([]*domain.Application, error) {
	stmt := db.WithContext(ctx).Where("koperasi_id = ?", koperasiID)
	if status != nil {
		stmt = stmt.Where("status = ?", *status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)

	var apps []*domain.Application
	err := stmt.
		Order("created_at desc, id desc").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) ListActiveByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Application, error) {
	var apps []domain.Application
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusActive).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.Status, decidedBy snowflake.ID, decidedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE membership_applications
		 SET status = ?, decided_by = ?, decided_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		to,
		decidedBy,
		decidedAt,
		decidedAt,
		id,
		from,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

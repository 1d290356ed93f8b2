// Package seed bootstraps the default koperasi and admin owner so a
// self-hosted deployment is usable immediately after first start.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/sentrakoop/sentra/internal/auth/domain"
	"github.com/sentrakoop/sentra/internal/auth/password"
	"github.com/sentrakoop/sentra/internal/config"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	"gorm.io/gorm"
)

const (
	defaultKoperasiName = "Koperasi Sentra"
	defaultAdminDisplay = "Sentra Admin"
)

// EnsureDefaultKoperasi seeds the default koperasi, optionally with a
// fixed ID from configuration.
func EnsureDefaultKoperasi(db *gorm.DB, fixedID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureKoperasiTx(ctx, tx, node, fixedID)
		return err
	})
}

// EnsureDefaultKoperasiAndAdmin seeds the default koperasi plus an
// admin user who owns it.
func EnsureDefaultKoperasiAndAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k, err := ensureKoperasiTx(ctx, tx, node, cfg.DefaultKoperasiID)
		if err != nil {
			return err
		}

		adminEmail := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminEmail))

		var user authdomain.User
		err = tx.WithContext(ctx).Where("email = ?", adminEmail).First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(cfg.Bootstrap.AdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:           node.Generate(),
				Email:        adminEmail,
				DisplayName:  defaultAdminDisplay,
				PasswordHash: &hashed,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var owner koperasidomain.Owner
		err = tx.WithContext(ctx).
			Where("koperasi_id = ? AND user_id = ?", k.ID, user.ID).
			First(&owner).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now().UTC()
			owner = koperasidomain.Owner{
				ID:         node.Generate(),
				KoperasiID: k.ID,
				UserID:     user.ID,
				IsActive:   true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.WithContext(ctx).Create(&owner).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func ensureKoperasiTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, fixedID int64) (*koperasidomain.Koperasi, error) {
	var k koperasidomain.Koperasi
	err := tx.WithContext(ctx).Where("slug = ?", slug.Make(defaultKoperasiName)).First(&k).Error
	if err == nil {
		return &k, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id := node.Generate()
	if fixedID != 0 {
		id = snowflake.ID(fixedID)
	}

	now := time.Now().UTC()
	k = koperasidomain.Koperasi{
		ID:        id,
		Name:      defaultKoperasiName,
		Slug:      slug.Make(defaultKoperasiName),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

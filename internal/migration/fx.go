package migration

import (
	authdomain "github.com/sentrakoop/sentra/internal/auth/domain"
	"github.com/sentrakoop/sentra/internal/config"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments rely on the model schema
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&koperasidomain.Koperasi{},
				&koperasidomain.Owner{},
				&membershipdomain.Application{},
				&marginruledomain.MarginRule{},
				&productdomain.Product{},
			); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultKoperasiAndOwner {
			return seed.EnsureDefaultKoperasiAndAdmin(conn, cfg)
		}
		if cfg.DefaultKoperasiID != 0 {
			return seed.EnsureDefaultKoperasi(conn, cfg.DefaultKoperasiID)
		}
		return nil
	}),
)

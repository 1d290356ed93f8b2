package auth

import (
	"github.com/sentrakoop/sentra/internal/auth/repository"
	"github.com/sentrakoop/sentra/internal/auth/service"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideSessions),
	fx.Provide(func(s koperasidomain.Service) service.OwnershipSource { return s }),
	fx.Provide(func(s membershipdomain.Service) service.MembershipSource { return s }),
	fx.Provide(service.New),
)

package membership

import (
	"github.com/sentrakoop/sentra/internal/membership/repository"
	"github.com/sentrakoop/sentra/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

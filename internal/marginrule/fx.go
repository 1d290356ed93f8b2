package marginrule

import (
	"github.com/sentrakoop/sentra/internal/marginrule/repository"
	"github.com/sentrakoop/sentra/internal/marginrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("marginrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package product

import (
	marginruleservice "github.com/sentrakoop/sentra/internal/marginrule/service"
	"github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/internal/product/repository"
	"github.com/sentrakoop/sentra/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	// margin rule validation normalizes FLAT against the catalog average
	fx.Provide(func(s *service.Service) marginruleservice.ReferencePriceSource { return s }),
)

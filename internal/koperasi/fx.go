package koperasi

import (
	"github.com/sentrakoop/sentra/internal/koperasi/repository"
	"github.com/sentrakoop/sentra/internal/koperasi/service"
	"go.uber.org/fx"
)

var Module = fx.Module("koperasi.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

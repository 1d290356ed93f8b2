package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/clock"
	"github.com/sentrakoop/sentra/internal/config"
	"github.com/sentrakoop/sentra/internal/logger"
	"github.com/sentrakoop/sentra/internal/migration"
	"github.com/sentrakoop/sentra/internal/observability"
	"github.com/sentrakoop/sentra/internal/server"
	"github.com/sentrakoop/sentra/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

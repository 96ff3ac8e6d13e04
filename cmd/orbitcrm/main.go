package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/internal/migration"
	"github.com/orbitcrm/orbitcrm/internal/observability"
	"github.com/orbitcrm/orbitcrm/internal/server"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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

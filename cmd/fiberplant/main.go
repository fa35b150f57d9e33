package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/config"
	"github.com/opennoc/fiberplant/internal/migration"
	"github.com/opennoc/fiberplant/internal/seed"
	"github.com/opennoc/fiberplant/internal/server"
	"github.com/opennoc/fiberplant/pkg/db"
	"github.com/opennoc/fiberplant/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		seed.Module,
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

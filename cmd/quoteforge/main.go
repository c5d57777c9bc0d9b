package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/migration"
	"github.com/quoteforge/quoteforge/internal/server"
	"github.com/quoteforge/quoteforge/pkg/db"
	"github.com/quoteforge/quoteforge/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

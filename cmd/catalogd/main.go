package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kollect-it/catalog/internal/catalog"
	"github.com/kollect-it/catalog/internal/clock"
	"github.com/kollect-it/catalog/internal/config"
	"github.com/kollect-it/catalog/internal/logger"
	"github.com/kollect-it/catalog/internal/migration"
	obsmetrics "github.com/kollect-it/catalog/internal/observability/metrics"
	"github.com/kollect-it/catalog/internal/reference"
	"github.com/kollect-it/catalog/internal/server"
	"github.com/kollect-it/catalog/internal/sku"
	"github.com/kollect-it/catalog/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		reference.Module,
		db.Module,
		obsmetrics.Module,
		migration.Module,

		// Functional domains
		sku.Module,
		catalog.Module,
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

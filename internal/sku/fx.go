package sku

import (
	"github.com/kollect-it/catalog/internal/sku/repository"
	"github.com/kollect-it/catalog/internal/sku/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sku.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

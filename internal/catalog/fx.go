package catalog

import (
	"github.com/kollect-it/catalog/internal/catalog/repository"
	"github.com/kollect-it/catalog/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

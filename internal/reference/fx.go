package reference

import (
	"github.com/kollect-it/catalog/internal/config"
	"go.uber.org/fx"
)

func Provide(cfg config.Config) (Catalog, error) {
	return Load(cfg.CatalogPath)
}

var Module = fx.Module("reference",
	fx.Provide(Provide),
)

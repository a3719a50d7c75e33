package migration

import (
	catalogdomain "github.com/kollect-it/catalog/internal/catalog/domain"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every stored model. The
// schema is small enough that AutoMigrate stays safe across sqlite and
// postgres; it never drops columns.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&skudomain.Counter{},
		&catalogdomain.Product{},
		&catalogdomain.ProductImage{},
	)
}

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
		if err := Migrate(conn); err != nil {
			return err
		}
		log.Info("schema migrated")
		return nil
	}),
)

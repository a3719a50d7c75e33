package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Product, error)
	// AllSKUs streams every stored SKU, used when rebuilding counters.
	AllSKUs(ctx context.Context, db *gorm.DB) ([]string, error)
}

package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the durable counter store. NextNumber must be atomic:
// concurrent callers, including callers in other processes, must never
// observe the same number for the same (prefix, year).
type Repository interface {
	NextNumber(ctx context.Context, db *gorm.DB, prefix string, year int) (int, error)
	Current(ctx context.Context, db *gorm.DB, prefix string, year int) (int, error)
	Set(ctx context.Context, db *gorm.DB, prefix string, year, number int) error
	// Raise moves the counter up to number only when it is ahead of the
	// stored value; used when rebuilding counters from the catalog.
	Raise(ctx context.Context, db *gorm.DB, prefix string, year, number int) error
	All(ctx context.Context, db *gorm.DB) ([]Counter, error)
}

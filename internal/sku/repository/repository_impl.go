package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kollect-it/catalog/internal/sku/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// NextNumber increments and returns the counter in a single statement.
// The upsert keeps the read-modify-write inside the database, so
// concurrent allocators (even in separate processes) serialize on the
// (prefix, year) row.
func (r *repo) NextNumber(ctx context.Context, db *gorm.DB, prefix string, year int) (int, error) {
	now := time.Now().UTC()
	var number int
	err := db.WithContext(ctx).Raw(`
		INSERT INTO sku_counters (prefix, year, last_number, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_number = sku_counters.last_number + 1, updated_at = ?
		RETURNING last_number`,
		prefix, year, now, now,
	).Scan(&number).Error
	if err != nil {
		return 0, fmt.Errorf("next sku number: %w", err)
	}
	return number, nil
}

func (r *repo) Current(ctx context.Context, db *gorm.DB, prefix string, year int) (int, error) {
	var counter domain.Counter
	err := db.WithContext(ctx).
		Where("prefix = ? AND year = ?", prefix, year).
		Limit(1).
		Find(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}

func (r *repo) Set(ctx context.Context, db *gorm.DB, prefix string, year, number int) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(`
		INSERT INTO sku_counters (prefix, year, last_number, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_number = ?, updated_at = ?`,
		prefix, year, number, now, number, now,
	).Error
}

func (r *repo) Raise(ctx context.Context, db *gorm.DB, prefix string, year, number int) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(`
		INSERT INTO sku_counters (prefix, year, last_number, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_number = excluded.last_number, updated_at = excluded.updated_at
		WHERE excluded.last_number > sku_counters.last_number`,
		prefix, year, number, now,
	).Error
}

func (r *repo) All(ctx context.Context, db *gorm.DB) ([]domain.Counter, error) {
	var counters []domain.Counter
	if err := db.WithContext(ctx).
		Order("prefix, year").
		Find(&counters).Error; err != nil {
		return nil, err
	}
	return counters, nil
}

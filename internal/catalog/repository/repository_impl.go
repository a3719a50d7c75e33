package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kollect-it/catalog/internal/catalog/domain"
	"github.com/kollect-it/catalog/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

// List returns up to PageSize+1 rows so the caller can tell whether a
// further page exists. Snowflake IDs are time-ordered, so paging on id
// alone keeps the cursor stable under concurrent inserts.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Order("id DESC")

	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.PageToken != "" {
		cursor, err := pagination.DecodeCursor(filter.PageToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPageToken, err)
		}
		lastID, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPageToken, err)
		}
		stmt = stmt.Where("id < ?", lastID)
	}

	var items []domain.Product
	if err := stmt.Limit(filter.PageSize + 1).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AllSKUs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var skus []string
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Order("sku ASC").
		Pluck("sku", &skus).Error
	if err != nil {
		return nil, err
	}
	return skus, nil
}

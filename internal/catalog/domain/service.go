package domain

import (
	"context"

	productdomain "github.com/kollect-it/catalog/internal/product/domain"
)

// Service ingests normalized product payloads from the desktop
// pipeline and serves the stored catalog back.
type Service interface {
	// Create validates and stores a submitted payload. A payload whose
	// SKU already exists returns ErrDuplicateSKU; creation is atomic,
	// so no image rows survive a failed insert.
	Create(ctx context.Context, payload productdomain.Payload) (*Response, error)
	Get(ctx context.Context, sku string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	// RebuildCounters raises SKU counters to match the highest stored
	// SKU per (prefix, year). Counters never move down.
	RebuildCounters(ctx context.Context) (*RebuildResult, error)
}

package domain

import "context"

// Service allocates durable, monotonically increasing SKUs per category.
type Service interface {
	// Allocate returns the next SKU for the category. The counter
	// increment is persisted before the SKU is returned; a failed
	// submission later never rolls the counter back.
	Allocate(ctx context.Context, categoryID string) (string, error)
	// Peek previews the next SKU without incrementing the counter.
	Peek(ctx context.Context, categoryID string) (string, error)
	Stats(ctx context.Context) (Stats, error)
	SetCounter(ctx context.Context, categoryID string, year, number int) error
}

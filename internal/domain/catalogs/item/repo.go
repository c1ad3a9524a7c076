package item

import (
	"context"

	"vendorbook/internal/core/id"
	"vendorbook/internal/domain"
)

// Repository defines data access for items.
type Repository interface {
	domain.CatalogRepository[*Item]

	// ListLowStock returns live items whose stock is at or below their threshold.
	ListLowStock(ctx context.Context) ([]*Item, error)

	// SetStock overwrites the stock level.
	SetStock(ctx context.Context, itemID id.ID, stock int64) error

	// DecrementStock subtracts sold quantities, flooring each item at zero.
	DecrementStock(ctx context.Context, sold map[id.ID]int64) error

	// Count returns live item count and how many of them are low on stock.
	Count(ctx context.Context) (total, lowStock int64, err error)
}

// Package item provides the catalog of sellable items with their price, cost and stock.
package item

import (
	"context"
	"strings"
	"time"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/entity"
	"vendorbook/internal/core/types"
)

// DefaultLowStockThreshold is used when an item is created without one.
const DefaultLowStockThreshold int64 = 10

// Item is a sellable product.
type Item struct {
	entity.Catalog

	Category string `db:"category" json:"category"`

	// UnitPrice is what a vendor charges the customer per unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// UnitCost is what the business paid per unit
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	Stock             int64      `db:"stock" json:"stock"`
	LowStockThreshold int64      `db:"low_stock_threshold" json:"lowStockThreshold"`
	Description       *string    `db:"description" json:"description,omitempty"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
}

// NewItem creates an item with required fields.
func NewItem(name, category string, price, cost types.Money) *Item {
	return &Item{
		Catalog:           entity.NewCatalog(name),
		Category:          strings.TrimSpace(category),
		UnitPrice:         price,
		UnitCost:          cost,
		LowStockThreshold: DefaultLowStockThreshold,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if i.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}
	if i.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost must not be negative").
			WithDetail("field", "unitCost")
	}
	if i.Stock < 0 {
		return apperror.NewValidation("stock must not be negative").
			WithDetail("field", "stock")
	}
	if i.LowStockThreshold < 0 {
		return apperror.NewValidation("low stock threshold must not be negative").
			WithDetail("field", "lowStockThreshold")
	}
	return nil
}

// IsLowStock reports whether stock has fallen to the threshold.
func (i *Item) IsLowStock() bool {
	return i.Stock <= i.LowStockThreshold
}

// Margin is price minus cost per unit.
func (i *Item) Margin() types.Money {
	return i.UnitPrice.Sub(i.UnitCost)
}

// Package settlement implements the daily vendor settlement: stock taken in the
// morning, stock returned in the evening, and the revenue, cost, commission and
// profit derived from what was sold.
package settlement

import (
	"github.com/shopspring/decimal"

	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
)

// ItemRef is the catalog snapshot copied into a line when it is first created.
type ItemRef struct {
	ID        id.ID
	Name      string
	Category  string
	UnitPrice types.Money
	UnitCost  types.Money
}

// LineItem tracks one item for one vendor during a session.
type LineItem struct {
	ItemID           id.ID       `json:"itemId"`
	ItemName         string      `json:"itemName"`
	Category         string      `json:"category,omitempty"`
	UnitPrice        types.Money `json:"unitPrice"`
	UnitCost         types.Money `json:"unitCost"`
	QuantityTaken    int64       `json:"quantityTaken"`
	QuantityReturned int64       `json:"quantityReturned"`
	QuantitySold     int64       `json:"quantitySold"`
}

func newLine(item ItemRef) *LineItem {
	return &LineItem{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Category:  item.Category,
		UnitPrice: item.UnitPrice,
		UnitCost:  item.UnitCost,
	}
}

// SoldQuantity is taken minus returned, floored at zero.
func SoldQuantity(taken, returned int64) int64 {
	return max(0, taken-returned)
}

func (l *LineItem) setTaken(qty int64) {
	l.QuantityTaken = max(0, qty)
	l.QuantitySold = SoldQuantity(l.QuantityTaken, l.QuantityReturned)
}

func (l *LineItem) setReturned(qty int64) {
	l.QuantityReturned = max(0, qty)
	l.QuantitySold = SoldQuantity(l.QuantityTaken, l.QuantityReturned)
}

// Revenue is sold × unit price.
func (l *LineItem) Revenue() types.Money {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.QuantitySold))
}

// Cost is sold × unit cost.
func (l *LineItem) Cost() types.Money {
	return l.UnitCost.Mul(decimal.NewFromInt(l.QuantitySold))
}

package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vendorbook/internal/domain/catalogs/item"
)

// --- Request DTOs ---

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Name              string           `json:"name" binding:"required"`
	Category          string           `json:"category"`
	UnitPrice         *decimal.Decimal `json:"unitPrice" binding:"required"`
	UnitCost          *decimal.Decimal `json:"unitCost" binding:"required"`
	Stock             int64            `json:"stock"`
	LowStockThreshold *int64           `json:"lowStockThreshold"`
	Description       *string          `json:"description"`
	ExpiryDate        *time.Time       `json:"expiryDate"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.NewItem(r.Name, r.Category, *r.UnitPrice, *r.UnitCost)
	it.Stock = r.Stock
	if r.LowStockThreshold != nil {
		it.LowStockThreshold = *r.LowStockThreshold
	}
	it.Description = r.Description
	it.ExpiryDate = r.ExpiryDate
	return it
}

// UpdateItemRequest is the request body for updating an item.
type UpdateItemRequest struct {
	Name              string           `json:"name" binding:"required"`
	Category          string           `json:"category"`
	UnitPrice         *decimal.Decimal `json:"unitPrice" binding:"required"`
	UnitCost          *decimal.Decimal `json:"unitCost" binding:"required"`
	LowStockThreshold *int64           `json:"lowStockThreshold"`
	Description       *string          `json:"description"`
	ExpiryDate        *time.Time       `json:"expiryDate"`
	Version           int              `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity. Stock is changed only
// through the stock endpoint.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	it.Name = strings.TrimSpace(r.Name)
	if c := strings.TrimSpace(r.Category); c != "" {
		it.Category = c
	}
	it.UnitPrice = *r.UnitPrice
	it.UnitCost = *r.UnitCost
	if r.LowStockThreshold != nil {
		it.LowStockThreshold = *r.LowStockThreshold
	}
	it.Description = r.Description
	it.ExpiryDate = r.ExpiryDate
	it.Version = r.Version
}

// SetStockRequest sets an absolute stock level.
type SetStockRequest struct {
	Stock *int64 `json:"stock" binding:"required"`
}

// --- Response DTOs ---

// ItemResponse is the response body for an item.
type ItemResponse struct {
	CatalogResponse
	Category          string     `json:"category"`
	UnitPrice         Amount     `json:"unitPrice"`
	UnitCost          Amount     `json:"unitCost"`
	Stock             int64      `json:"stock"`
	LowStockThreshold int64      `json:"lowStockThreshold"`
	LowStock          bool       `json:"lowStock"`
	Description       *string    `json:"description,omitempty"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
}

// FromItem converts domain entity to response DTO.
func FromItem(it *item.Item) *ItemResponse {
	return &ItemResponse{
		CatalogResponse:   FromCatalog(it.Catalog),
		Category:          it.Category,
		UnitPrice:         Money(it.UnitPrice),
		UnitCost:          Money(it.UnitCost),
		Stock:             it.Stock,
		LowStockThreshold: it.LowStockThreshold,
		LowStock:          it.IsLowStock(),
		Description:       it.Description,
		ExpiryDate:        it.ExpiryDate,
	}
}

// FromItems converts a slice of items.
func FromItems(items []*item.Item) []*ItemResponse {
	out := make([]*ItemResponse, len(items))
	for i, it := range items {
		out[i] = FromItem(it)
	}
	return out
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"vendorbook/internal/core/id"
	"vendorbook/internal/domain/catalogs/item"
	"vendorbook/internal/domain/filter"
	"vendorbook/internal/infrastructure/http/v1/dto"
)

// ItemService is what the item endpoints need.
type ItemService interface {
	CatalogService[*item.Item]
	LowStock(ctx context.Context) ([]*item.Item, error)
	SetStock(ctx context.Context, itemID id.ID, stock int64) (*item.Item, error)
}

// ItemHandler serves the item catalog.
type ItemHandler struct {
	*CatalogHandler[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest]
	service ItemService
}

// NewItemHandler creates an item handler.
func NewItemHandler(base *BaseHandler, service ItemService) *ItemHandler {
	crud := NewCatalogHandler(base, CatalogHandlerConfig[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest]{
		Service: service,
		MapCreateDTO: func(req dto.CreateItemRequest) (*item.Item, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateItemRequest, existing *item.Item) (*item.Item, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(entity *item.Item) any {
			return dto.FromItem(entity)
		},
		ListFilters: func(c *gin.Context) []filter.Item {
			if category := c.Query("category"); category != "" {
				return []filter.Item{{Field: "category", Operator: filter.Equal, Value: category}}
			}
			return nil
		},
	})
	return &ItemHandler{CatalogHandler: crud, service: service}
}

// LowStock handles GET /items/low-stock.
func (h *ItemHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromItems(items)})
}

// SetStock handles PUT /items/:id/stock.
func (h *ItemHandler) SetStock(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it, err := h.service.SetStock(c.Request.Context(), itemID, *req.Stock)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromItem(it))
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"vendorbook/internal/core/id"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/domain/filter"
	"vendorbook/internal/domain/sales"
	"vendorbook/internal/infrastructure/http/v1/dto"
)

// VendorSalesSource lists a vendor's settled sales.
type VendorSalesSource interface {
	VendorSales(ctx context.Context, vendorID id.ID, f sales.ListFilter) ([]sales.VendorSale, error)
}

// VendorHandler serves the vendor registry.
type VendorHandler struct {
	*CatalogHandler[*vendor.Vendor, dto.CreateVendorRequest, dto.UpdateVendorRequest]
	vendors CatalogService[*vendor.Vendor]
	sales   VendorSalesSource
}

// NewVendorHandler creates a vendor handler.
func NewVendorHandler(base *BaseHandler, service CatalogService[*vendor.Vendor], salesSource VendorSalesSource) *VendorHandler {
	crud := NewCatalogHandler(base, CatalogHandlerConfig[*vendor.Vendor, dto.CreateVendorRequest, dto.UpdateVendorRequest]{
		Service: service,
		MapCreateDTO: func(req dto.CreateVendorRequest) (*vendor.Vendor, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateVendorRequest, existing *vendor.Vendor) (*vendor.Vendor, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		MapToDTO: func(entity *vendor.Vendor) any {
			return dto.FromVendor(entity)
		},
		ListFilters: func(c *gin.Context) []filter.Item {
			if status := c.Query("status"); status != "" {
				return []filter.Item{{Field: "status", Operator: filter.Equal, Value: status}}
			}
			return nil
		},
	})
	return &VendorHandler{CatalogHandler: crud, vendors: service, sales: salesSource}
}

// Sales handles GET /vendors/:id/sales?from=&to=.
func (h *VendorHandler) Sales(c *gin.Context) {
	ctx := c.Request.Context()

	vendorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ListSalesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	if _, err := h.vendors.GetByID(ctx, vendorID); err != nil {
		h.Error(c, err)
		return
	}

	history, err := h.sales.VendorSales(ctx, vendorID, sales.ListFilter{
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromVendorSales(history)})
}

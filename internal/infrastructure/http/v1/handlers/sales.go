package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/sales"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/infrastructure/http/v1/dto"
)

// SalesService reads submitted records.
type SalesService interface {
	Get(ctx context.Context, recordID id.ID) (*settlement.DailySalesRecord, error)
	List(ctx context.Context, f sales.ListFilter) (domain.ListResult[*settlement.DailySalesRecord], error)
	DailyReport(ctx context.Context, date string) (*sales.DailyReport, error)
	DashboardStats(ctx context.Context) (*sales.DashboardStats, error)
}

// SalesHandler serves submitted daily sales records and the dashboard.
type SalesHandler struct {
	*BaseHandler
	service SalesService
}

// NewSalesHandler creates a sales handler.
func NewSalesHandler(base *BaseHandler, service SalesService) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service}
}

// List handles GET /sales?from=&to=&vendorId=&limit=&offset=.
func (h *SalesHandler) List(c *gin.Context) {
	var req dto.ListSalesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	f := sales.ListFilter{From: req.From, To: req.To, Limit: req.Limit, Offset: req.Offset}
	if req.VendorID != "" {
		vendorID, err := id.Parse(req.VendorID)
		if err != nil {
			h.Error(c, errInvalidID("vendorId", req.VendorID))
			return
		}
		f.VendorID = &vendorID
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromRecords(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /sales/:id.
func (h *SalesHandler) Get(c *gin.Context) {
	recordID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(rec))
}

// Daily handles GET /sales/daily/:date.
func (h *SalesHandler) Daily(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		h.Error(c, apperror.NewValidation("date is required").WithDetail("field", "date"))
		return
	}

	report, err := h.service.DailyReport(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDailyReport(report))
}

// DashboardStats handles GET /dashboard/stats.
func (h *SalesHandler) DashboardStats(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDashboardStats(stats))
}

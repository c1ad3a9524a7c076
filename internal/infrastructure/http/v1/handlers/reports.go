package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"vendorbook/internal/domain/reports"
	"vendorbook/internal/infrastructure/http/v1/dto"
)

// ReportsService builds and reads monthly reports.
type ReportsService interface {
	GenerateMonthly(ctx context.Context, month string) (*reports.MonthlyReport, error)
	GetMonthly(ctx context.Context, month string) (*reports.MonthlyReport, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service ReportsService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportsService) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// GenerateMonthly handles POST /reports/monthly.
func (h *ReportsHandler) GenerateMonthly(c *gin.Context) {
	var req dto.GenerateMonthlyRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.GenerateMonthly(c.Request.Context(), req.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMonthlyReport(report))
}

// GetMonthly handles GET /reports/monthly/:month.
func (h *ReportsHandler) GetMonthly(c *gin.Context) {
	report, err := h.service.GetMonthly(c.Request.Context(), c.Param("month"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMonthlyReport(report))
}

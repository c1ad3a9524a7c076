package dto

import (
	"time"

	"vendorbook/internal/domain/sales"
	"vendorbook/internal/domain/settlement"
)

// --- Request DTOs ---

// ListSalesRequest filters submitted records.
type ListSalesRequest struct {
	From     string `form:"from"`
	To       string `form:"to"`
	VendorID string `form:"vendorId"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// --- Response DTOs ---

// RecordVendorResponse is one vendor's settled part of a record.
type RecordVendorResponse struct {
	VendorID       string             `json:"vendorId"`
	VendorName     string             `json:"vendorName"`
	CommissionRate Rate               `json:"commissionRate"`
	Items          []LineItemResponse `json:"items"`
	TotalsResponse
}

// RecordResponse is a submitted daily sales record.
type RecordResponse struct {
	ID           string                 `json:"id"`
	SubmissionID string                 `json:"submissionId"`
	Number       string                 `json:"number"`
	Date         string                 `json:"date"`
	WorkerID     string                 `json:"workerId,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	Vendors      []RecordVendorResponse `json:"vendors"`
	SessionTotalsResponse
}

// FromRecord converts a record.
func FromRecord(r *settlement.DailySalesRecord) *RecordResponse {
	resp := &RecordResponse{
		ID:                    r.ID.String(),
		SubmissionID:          r.SubmissionID.String(),
		Number:                r.Number,
		Date:                  r.Date,
		WorkerID:              r.WorkerID,
		CreatedAt:             r.CreatedAt,
		Vendors:               make([]RecordVendorResponse, len(r.Vendors)),
		SessionTotalsResponse: FromSessionTotals(r.SessionTotals),
	}
	for i, v := range r.Vendors {
		resp.Vendors[i] = RecordVendorResponse{
			VendorID:       v.VendorID.String(),
			VendorName:     v.VendorName,
			CommissionRate: Rate(v.CommissionRate),
			Items:          fromLines(v.Items),
			TotalsResponse: FromTotals(v.Totals),
		}
	}
	return resp
}

// FromRecords converts a slice of records.
func FromRecords(in []*settlement.DailySalesRecord) []*RecordResponse {
	out := make([]*RecordResponse, len(in))
	for i, r := range in {
		out[i] = FromRecord(r)
	}
	return out
}

// DailyReportResponse lists one day's records with their combined totals.
type DailyReportResponse struct {
	Date    string            `json:"date"`
	Records []*RecordResponse `json:"records"`
	SessionTotalsResponse
}

// FromDailyReport converts a daily report.
func FromDailyReport(r *sales.DailyReport) *DailyReportResponse {
	return &DailyReportResponse{
		Date:                  r.Date,
		Records:               FromRecords(r.Records),
		SessionTotalsResponse: FromSessionTotals(r.SessionTotals),
	}
}

// DashboardStatsResponse is the owner's overview.
type DashboardStatsResponse struct {
	TotalRevenue  Amount `json:"totalRevenue"`
	TotalProfit   Amount `json:"totalProfit"`
	TotalVendors  int64  `json:"totalVendors"`
	TotalProducts int64  `json:"totalProducts"`
	LowStockItems int64  `json:"lowStockItems"`
}

// FromDashboardStats converts dashboard stats. TotalProfit is net profit.
func FromDashboardStats(s *sales.DashboardStats) *DashboardStatsResponse {
	return &DashboardStatsResponse{
		TotalRevenue:  Money(s.TotalRevenue),
		TotalProfit:   Money(s.TotalNetProfit),
		TotalVendors:  s.ActiveVendors,
		TotalProducts: s.Products,
		LowStockItems: s.LowStockItems,
	}
}

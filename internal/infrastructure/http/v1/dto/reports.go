package dto

import (
	"time"

	"vendorbook/internal/domain/reports"
)

// GenerateMonthlyRequest names the month to build. Empty means the current month.
type GenerateMonthlyRequest struct {
	Month string `json:"month"`
}

// CategoryBreakdownResponse is one category's share of a month.
type CategoryBreakdownResponse struct {
	Category string `json:"category"`
	Sales    Amount `json:"sales"`
	Profit   Amount `json:"profit"`
	Quantity int64  `json:"quantity"`
}

// VendorBreakdownResponse is one vendor's share of a month.
type VendorBreakdownResponse struct {
	VendorID     string `json:"vendorId"`
	VendorName   string `json:"vendorName"`
	Sales        Amount `json:"sales"`
	Commission   Amount `json:"commission"`
	Transactions int64  `json:"transactions"`
}

// MonthlyReportResponse is a stored monthly report.
type MonthlyReportResponse struct {
	ID                    string                      `json:"id"`
	Month                 string                      `json:"month"`
	TotalSales            Amount                      `json:"totalSales"`
	TotalProfit           Amount                      `json:"totalProfit"`
	TotalVendorCommission Amount                      `json:"totalVendorCommission"`
	NetProfit             Amount                      `json:"netProfit"`
	TotalTransactions     int64                       `json:"totalTransactions"`
	CategoryBreakdown     []CategoryBreakdownResponse `json:"categoryBreakdown"`
	VendorBreakdown       []VendorBreakdownResponse   `json:"vendorBreakdown"`
	GeneratedAt           time.Time                   `json:"generatedAt"`
}

// FromMonthlyReport converts a monthly report.
func FromMonthlyReport(r *reports.MonthlyReport) *MonthlyReportResponse {
	resp := &MonthlyReportResponse{
		ID:                    r.ID.String(),
		Month:                 r.Month,
		TotalSales:            Money(r.TotalSales),
		TotalProfit:           Money(r.TotalProfit),
		TotalVendorCommission: Money(r.TotalVendorCommission),
		NetProfit:             Money(r.NetProfit),
		TotalTransactions:     r.TotalTransactions,
		CategoryBreakdown:     make([]CategoryBreakdownResponse, len(r.Categories)),
		VendorBreakdown:       make([]VendorBreakdownResponse, len(r.Vendors)),
		GeneratedAt:           r.GeneratedAt,
	}
	for i, c := range r.Categories {
		resp.CategoryBreakdown[i] = CategoryBreakdownResponse{
			Category: c.Category,
			Sales:    Money(c.Sales),
			Profit:   Money(c.Profit),
			Quantity: c.Quantity,
		}
	}
	for i, v := range r.Vendors {
		resp.VendorBreakdown[i] = VendorBreakdownResponse{
			VendorID:     v.VendorID.String(),
			VendorName:   v.VendorName,
			Sales:        Money(v.Sales),
			Commission:   Money(v.Commission),
			Transactions: v.Transactions,
		}
	}
	return resp
}

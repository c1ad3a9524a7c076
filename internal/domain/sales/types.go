// Package sales stores submitted daily settlement records and answers questions
// about them: daily reports, vendor history and dashboard figures.
package sales

import (
	"time"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/settlement"
)

// ListFilter narrows record queries. Dates are inclusive, YYYY-MM-DD.
type ListFilter struct {
	From     string
	To       string
	VendorID *id.ID

	Limit  int
	Offset int
}

// Normalize validates dates and applies paging bounds.
func (f *ListFilter) Normalize() error {
	for field, v := range map[string]string{"from": f.From, "to": f.To} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(settlement.DateLayout, v); err != nil {
			return apperror.NewValidation("invalid date").
				WithDetail("field", field).
				WithDetail("value", v)
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return apperror.NewValidation("from must not be after to").
			WithDetail("from", f.From).
			WithDetail("to", f.To)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

// VendorSale is one vendor's part of one submitted record.
type VendorSale struct {
	RecordID       id.ID                 `json:"recordId"`
	Number         string                `json:"number"`
	Date           string                `json:"date"`
	VendorID       id.ID                 `json:"vendorId"`
	VendorName     string                `json:"vendorName"`
	CommissionRate types.Percent         `json:"commissionRate"`
	Items          []settlement.LineItem `json:"items"`

	settlement.Totals
}

// DailyReport collects every record submitted for one date.
type DailyReport struct {
	Date    string                         `json:"date"`
	Records []*settlement.DailySalesRecord `json:"records"`

	settlement.SessionTotals
}

// DashboardStats are the headline figures for a business.
type DashboardStats struct {
	TotalRevenue   types.Money `json:"totalRevenue"`
	TotalNetProfit types.Money `json:"totalProfit"`
	ActiveVendors  int64       `json:"totalVendors"`
	Products       int64       `json:"totalProducts"`
	LowStockItems  int64       `json:"lowStockItems"`
}

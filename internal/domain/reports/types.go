// Package reports builds and stores monthly sales reports.
package reports

import (
	"time"

	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
)

// MonthLayout is the format of a report month.
const MonthLayout = "2006-01"

// UnknownCategory groups lines recorded without a category.
const UnknownCategory = "Unknown"

// MonthlyReport summarises one calendar month of submitted records.
// TotalProfit is gross profit; NetProfit is gross profit less vendor commission.
type MonthlyReport struct {
	ID         id.ID  `json:"id"`
	BusinessID id.ID  `json:"businessId"`
	Month      string `json:"month"`

	TotalSales            types.Money `json:"totalSales"`
	TotalProfit           types.Money `json:"totalProfit"`
	TotalVendorCommission types.Money `json:"totalVendorCommission"`
	NetProfit             types.Money `json:"netProfit"`
	TotalTransactions     int64       `json:"totalTransactions"`

	Categories []CategoryBreakdown `json:"categoryBreakdown"`
	Vendors    []VendorBreakdown   `json:"vendorBreakdown"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// CategoryBreakdown is one item category's share of the month.
type CategoryBreakdown struct {
	Category string      `json:"category"`
	Sales    types.Money `json:"sales"`
	Profit   types.Money `json:"profit"`
	Quantity int64       `json:"quantity"`
}

// VendorBreakdown is one vendor's share of the month.
type VendorBreakdown struct {
	VendorID     id.ID       `json:"vendorId"`
	VendorName   string      `json:"vendorName"`
	Sales        types.Money `json:"sales"`
	Commission   types.Money `json:"commission"`
	Transactions int64       `json:"transactions"`
}

// MonthRange returns the first and last day of a YYYY-MM month.
func MonthRange(month string) (from, to time.Time, err error) {
	from, err = time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, from.AddDate(0, 1, -1), nil
}

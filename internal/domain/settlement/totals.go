package settlement

import (
	"vendorbook/internal/core/types"
)

// Totals are the financial results for one vendor.
// Commission is charged on revenue, not on gross profit.
type Totals struct {
	Revenue     types.Money `json:"totalRevenue"`
	Cost        types.Money `json:"totalCost"`
	GrossProfit types.Money `json:"grossProfit"`
	Commission  types.Money `json:"vendorCommission"`
	NetProfit   types.Money `json:"netProfit"`
}

// ComputeTotals derives vendor totals from its lines and commission rate.
func ComputeTotals(lines []*LineItem, rate types.Percent) Totals {
	revenue, cost := types.Zero(), types.Zero()
	for _, l := range lines {
		revenue = revenue.Add(l.Revenue())
		cost = cost.Add(l.Cost())
	}

	gross := revenue.Sub(cost)
	commission := types.PercentOf(revenue, rate)
	return Totals{
		Revenue:     revenue,
		Cost:        cost,
		GrossProfit: gross,
		Commission:  commission,
		NetProfit:   gross.Sub(commission),
	}
}

// SessionTotals are the straight sums of vendor totals across a session.
type SessionTotals struct {
	TotalRevenue          types.Money `json:"totalRevenue"`
	TotalCost             types.Money `json:"totalCost"`
	GrossProfit           types.Money `json:"grossProfit"`
	TotalVendorCommission types.Money `json:"totalVendorCommission"`
	TotalNetProfit        types.Money `json:"totalNetProfit"`
}

// ZeroSessionTotals returns totals with every field set to zero.
func ZeroSessionTotals() SessionTotals {
	return SessionTotals{
		TotalRevenue:          types.Zero(),
		TotalCost:             types.Zero(),
		GrossProfit:           types.Zero(),
		TotalVendorCommission: types.Zero(),
		TotalNetProfit:        types.Zero(),
	}
}

// Add accumulates one vendor's totals.
func (s SessionTotals) Add(t Totals) SessionTotals {
	return SessionTotals{
		TotalRevenue:          s.TotalRevenue.Add(t.Revenue),
		TotalCost:             s.TotalCost.Add(t.Cost),
		GrossProfit:           s.GrossProfit.Add(t.GrossProfit),
		TotalVendorCommission: s.TotalVendorCommission.Add(t.Commission),
		TotalNetProfit:        s.TotalNetProfit.Add(t.NetProfit),
	}
}

// Merge adds another session's totals.
func (s SessionTotals) Merge(o SessionTotals) SessionTotals {
	return SessionTotals{
		TotalRevenue:          s.TotalRevenue.Add(o.TotalRevenue),
		TotalCost:             s.TotalCost.Add(o.TotalCost),
		GrossProfit:           s.GrossProfit.Add(o.GrossProfit),
		TotalVendorCommission: s.TotalVendorCommission.Add(o.TotalVendorCommission),
		TotalNetProfit:        s.TotalNetProfit.Add(o.TotalNetProfit),
	}
}

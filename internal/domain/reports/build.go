package reports

import (
	"sort"
	"time"

	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/settlement"
)

// Build aggregates records into a monthly report. Every sold line counts as
// one transaction. Breakdowns are ordered by sales, largest first.
func Build(month string, records []*settlement.DailySalesRecord) *MonthlyReport {
	r := &MonthlyReport{
		Month:                 month,
		TotalSales:            types.Zero(),
		TotalProfit:           types.Zero(),
		TotalVendorCommission: types.Zero(),
		NetProfit:             types.Zero(),
		Categories:            []CategoryBreakdown{},
		Vendors:               []VendorBreakdown{},
		GeneratedAt:           time.Now().UTC(),
	}

	categories := map[string]*CategoryBreakdown{}
	vendors := map[id.ID]*VendorBreakdown{}

	for _, rec := range records {
		r.TotalSales = r.TotalSales.Add(rec.TotalRevenue)
		r.TotalProfit = r.TotalProfit.Add(rec.GrossProfit)
		r.TotalVendorCommission = r.TotalVendorCommission.Add(rec.TotalVendorCommission)

		for _, v := range rec.Vendors {
			vb, ok := vendors[v.VendorID]
			if !ok {
				vb = &VendorBreakdown{
					VendorID:   v.VendorID,
					VendorName: v.VendorName,
					Sales:      types.Zero(),
					Commission: types.Zero(),
				}
				vendors[v.VendorID] = vb
			}
			vb.Sales = vb.Sales.Add(v.Revenue)
			vb.Commission = vb.Commission.Add(v.Commission)
			vb.Transactions += int64(len(v.Items))
			r.TotalTransactions += int64(len(v.Items))

			for _, l := range v.Items {
				name := l.Category
				if name == "" {
					name = UnknownCategory
				}
				cb, ok := categories[name]
				if !ok {
					cb = &CategoryBreakdown{Category: name, Sales: types.Zero(), Profit: types.Zero()}
					categories[name] = cb
				}
				cb.Sales = cb.Sales.Add(l.Revenue())
				cb.Profit = cb.Profit.Add(l.Revenue().Sub(l.Cost()))
				cb.Quantity += l.QuantitySold
			}
		}
	}
	r.NetProfit = r.TotalProfit.Sub(r.TotalVendorCommission)

	for _, cb := range categories {
		r.Categories = append(r.Categories, *cb)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		if c := r.Categories[i].Sales.Cmp(r.Categories[j].Sales); c != 0 {
			return c > 0
		}
		return r.Categories[i].Category < r.Categories[j].Category
	})

	for _, vb := range vendors {
		r.Vendors = append(r.Vendors, *vb)
	}
	sort.Slice(r.Vendors, func(i, j int) bool {
		if c := r.Vendors[i].Sales.Cmp(r.Vendors[j].Sales); c != 0 {
			return c > 0
		}
		return r.Vendors[i].VendorName < r.Vendors[j].VendorName
	})

	return r
}

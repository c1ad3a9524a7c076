package sales_repo

import (
	"time"

	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/settlement"
)

type recordRow struct {
	ID                    id.ID       `db:"id"`
	BusinessID            id.ID       `db:"business_id"`
	SubmissionID          id.ID       `db:"submission_id"`
	Number                string      `db:"number"`
	WorkerID              string      `db:"worker_id"`
	SaleDate              time.Time   `db:"sale_date"`
	TotalRevenue          types.Money `db:"total_revenue"`
	TotalCost             types.Money `db:"total_cost"`
	GrossProfit           types.Money `db:"gross_profit"`
	TotalVendorCommission types.Money `db:"total_vendor_commission"`
	TotalNetProfit        types.Money `db:"total_net_profit"`
	CreatedAt             time.Time   `db:"created_at"`
}

type vendorRow struct {
	ID               id.ID         `db:"id"`
	RecordID         id.ID         `db:"record_id"`
	BusinessID       id.ID         `db:"business_id"`
	Position         int           `db:"position"`
	VendorID         id.ID         `db:"vendor_id"`
	VendorName       string        `db:"vendor_name"`
	CommissionRate   types.Percent `db:"commission_rate"`
	TotalRevenue     types.Money   `db:"total_revenue"`
	TotalCost        types.Money   `db:"total_cost"`
	GrossProfit      types.Money   `db:"gross_profit"`
	VendorCommission types.Money   `db:"vendor_commission"`
	NetProfit        types.Money   `db:"net_profit"`
}

type lineRow struct {
	ID               id.ID       `db:"id"`
	RecordID         id.ID       `db:"record_id"`
	VendorRowID      id.ID       `db:"vendor_row_id"`
	Position         int         `db:"position"`
	ItemID           id.ID       `db:"item_id"`
	ItemName         string      `db:"item_name"`
	Category         string      `db:"category"`
	UnitPrice        types.Money `db:"unit_price"`
	UnitCost         types.Money `db:"unit_cost"`
	QuantityTaken    int64       `db:"quantity_taken"`
	QuantityReturned int64       `db:"quantity_returned"`
	QuantitySold     int64       `db:"quantity_sold"`
}

// vendorSaleRow is a vendor row joined with its record header.
type vendorSaleRow struct {
	vendorRow
	Number   string    `db:"number"`
	SaleDate time.Time `db:"sale_date"`
}

var (
	recordCols = []string{
		"id", "business_id", "submission_id", "number", "worker_id", "sale_date",
		"total_revenue", "total_cost", "gross_profit", "total_vendor_commission", "total_net_profit", "created_at",
	}
	vendorCols = []string{
		"id", "record_id", "business_id", "position", "vendor_id", "vendor_name", "commission_rate",
		"total_revenue", "total_cost", "gross_profit", "vendor_commission", "net_profit",
	}
	lineCols = []string{
		"id", "record_id", "vendor_row_id", "position", "item_id", "item_name", "category",
		"unit_price", "unit_cost", "quantity_taken", "quantity_returned", "quantity_sold",
	}
)

func (r recordRow) values() []any {
	return []any{
		r.ID, r.BusinessID, r.SubmissionID, r.Number, r.WorkerID, r.SaleDate,
		r.TotalRevenue, r.TotalCost, r.GrossProfit, r.TotalVendorCommission, r.TotalNetProfit, r.CreatedAt,
	}
}

func (v vendorRow) values() []any {
	return []any{
		v.ID, v.RecordID, v.BusinessID, v.Position, v.VendorID, v.VendorName, v.CommissionRate,
		v.TotalRevenue, v.TotalCost, v.GrossProfit, v.VendorCommission, v.NetProfit,
	}
}

func (l lineRow) values() []any {
	return []any{
		l.ID, l.RecordID, l.VendorRowID, l.Position, l.ItemID, l.ItemName, l.Category,
		l.UnitPrice, l.UnitCost, l.QuantityTaken, l.QuantityReturned, l.QuantitySold,
	}
}

// flatten splits a record into its table rows.
func flatten(rec *settlement.DailySalesRecord) (recordRow, []vendorRow, []lineRow, error) {
	date, err := time.Parse(settlement.DateLayout, rec.Date)
	if err != nil {
		return recordRow{}, nil, nil, err
	}

	header := recordRow{
		ID:                    rec.ID,
		BusinessID:            rec.BusinessID,
		SubmissionID:          rec.SubmissionID,
		Number:                rec.Number,
		WorkerID:              rec.WorkerID,
		SaleDate:              date,
		TotalRevenue:          rec.TotalRevenue,
		TotalCost:             rec.TotalCost,
		GrossProfit:           rec.GrossProfit,
		TotalVendorCommission: rec.TotalVendorCommission,
		TotalNetProfit:        rec.TotalNetProfit,
		CreatedAt:             rec.CreatedAt,
	}

	var vendors []vendorRow
	var lines []lineRow
	for vi, v := range rec.Vendors {
		vr := vendorRow{
			ID:               id.New(),
			RecordID:         rec.ID,
			BusinessID:       rec.BusinessID,
			Position:         vi,
			VendorID:         v.VendorID,
			VendorName:       v.VendorName,
			CommissionRate:   v.CommissionRate,
			TotalRevenue:     v.Revenue,
			TotalCost:        v.Cost,
			GrossProfit:      v.GrossProfit,
			VendorCommission: v.Commission,
			NetProfit:        v.NetProfit,
		}
		vendors = append(vendors, vr)

		for li, l := range v.Items {
			lines = append(lines, lineRow{
				ID:               id.New(),
				RecordID:         rec.ID,
				VendorRowID:      vr.ID,
				Position:         li,
				ItemID:           l.ItemID,
				ItemName:         l.ItemName,
				Category:         l.Category,
				UnitPrice:        l.UnitPrice,
				UnitCost:         l.UnitCost,
				QuantityTaken:    l.QuantityTaken,
				QuantityReturned: l.QuantityReturned,
				QuantitySold:     l.QuantitySold,
			})
		}
	}
	return header, vendors, lines, nil
}

func (v vendorRow) totals() settlement.Totals {
	return settlement.Totals{
		Revenue:     v.TotalRevenue,
		Cost:        v.TotalCost,
		GrossProfit: v.GrossProfit,
		Commission:  v.VendorCommission,
		NetProfit:   v.NetProfit,
	}
}

func (l lineRow) lineItem() settlement.LineItem {
	return settlement.LineItem{
		ItemID:           l.ItemID,
		ItemName:         l.ItemName,
		Category:         l.Category,
		UnitPrice:        l.UnitPrice,
		UnitCost:         l.UnitCost,
		QuantityTaken:    l.QuantityTaken,
		QuantityReturned: l.QuantityReturned,
		QuantitySold:     l.QuantitySold,
	}
}

// assemble rebuilds records from their rows, keeping headers in input order
// and vendors and lines in position order.
func assemble(headers []recordRow, vendors []vendorRow, lines []lineRow) []*settlement.DailySalesRecord {
	linesByVendor := make(map[id.ID][]settlement.LineItem, len(vendors))
	for _, l := range lines {
		linesByVendor[l.VendorRowID] = append(linesByVendor[l.VendorRowID], l.lineItem())
	}

	vendorsByRecord := make(map[id.ID][]settlement.VendorRecord, len(headers))
	for _, v := range vendors {
		items := linesByVendor[v.ID]
		if items == nil {
			items = []settlement.LineItem{}
		}
		vendorsByRecord[v.RecordID] = append(vendorsByRecord[v.RecordID], settlement.VendorRecord{
			VendorID:       v.VendorID,
			VendorName:     v.VendorName,
			CommissionRate: v.CommissionRate,
			Items:          items,
			Totals:         v.totals(),
		})
	}

	out := make([]*settlement.DailySalesRecord, 0, len(headers))
	for _, h := range headers {
		vs := vendorsByRecord[h.ID]
		if vs == nil {
			vs = []settlement.VendorRecord{}
		}
		out = append(out, &settlement.DailySalesRecord{
			ID:           h.ID,
			BusinessID:   h.BusinessID,
			SubmissionID: h.SubmissionID,
			Number:       h.Number,
			WorkerID:     h.WorkerID,
			Date:         h.SaleDate.Format(settlement.DateLayout),
			CreatedAt:    h.CreatedAt,
			Vendors:      vs,
			SessionTotals: settlement.SessionTotals{
				TotalRevenue:          h.TotalRevenue,
				TotalCost:             h.TotalCost,
				GrossProfit:           h.GrossProfit,
				TotalVendorCommission: h.TotalVendorCommission,
				TotalNetProfit:        h.TotalNetProfit,
			},
		})
	}
	return out
}

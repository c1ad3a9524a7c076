package dto

import (
	"encoding/json"
	"time"

	"vendorbook/internal/domain/settlement"
)

// --- Request DTOs ---

// StartSessionRequest opens a session. An empty date means today.
type StartSessionRequest struct {
	Date string `json:"date"`
}

// SelectVendorRequest adds a vendor to a session. With VendorID set an
// existing vendor is selected; otherwise a new one is registered from the
// remaining fields.
type SelectVendorRequest struct {
	VendorID       string          `json:"vendorId"`
	Name           string          `json:"name"`
	CommissionRate json.RawMessage `json:"commissionRate"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
}

// QuantityRequest sets a taken or returned quantity.
type QuantityRequest struct {
	Quantity *int64 `json:"quantity" binding:"required"`
}

// --- Response DTOs ---

// TotalsResponse holds one vendor's financial results.
type TotalsResponse struct {
	TotalRevenue     Amount `json:"totalRevenue"`
	TotalCost        Amount `json:"totalCost"`
	GrossProfit      Amount `json:"grossProfit"`
	VendorCommission Amount `json:"vendorCommission"`
	NetProfit        Amount `json:"netProfit"`
}

// FromTotals converts vendor totals.
func FromTotals(t settlement.Totals) TotalsResponse {
	return TotalsResponse{
		TotalRevenue:     Money(t.Revenue),
		TotalCost:        Money(t.Cost),
		GrossProfit:      Money(t.GrossProfit),
		VendorCommission: Money(t.Commission),
		NetProfit:        Money(t.NetProfit),
	}
}

// SessionTotalsResponse holds totals summed over vendors.
type SessionTotalsResponse struct {
	TotalRevenue          Amount `json:"totalRevenue"`
	TotalCost             Amount `json:"totalCost"`
	GrossProfit           Amount `json:"grossProfit"`
	TotalVendorCommission Amount `json:"totalVendorCommission"`
	TotalNetProfit        Amount `json:"totalNetProfit"`
}

// FromSessionTotals converts session totals.
func FromSessionTotals(t settlement.SessionTotals) SessionTotalsResponse {
	return SessionTotalsResponse{
		TotalRevenue:          Money(t.TotalRevenue),
		TotalCost:             Money(t.TotalCost),
		GrossProfit:           Money(t.GrossProfit),
		TotalVendorCommission: Money(t.TotalVendorCommission),
		TotalNetProfit:        Money(t.TotalNetProfit),
	}
}

// LineItemResponse is one item row.
type LineItemResponse struct {
	ItemID           string `json:"itemId"`
	ItemName         string `json:"itemName"`
	Category         string `json:"category,omitempty"`
	UnitPrice        Amount `json:"unitPrice"`
	UnitCost         Amount `json:"unitCost"`
	QuantityTaken    int64  `json:"quantityTaken"`
	QuantityReturned int64  `json:"quantityReturned"`
	QuantitySold     int64  `json:"quantitySold"`
}

func fromLine(l settlement.LineItem) LineItemResponse {
	return LineItemResponse{
		ItemID:           l.ItemID.String(),
		ItemName:         l.ItemName,
		Category:         l.Category,
		UnitPrice:        Money(l.UnitPrice),
		UnitCost:         Money(l.UnitCost),
		QuantityTaken:    l.QuantityTaken,
		QuantityReturned: l.QuantityReturned,
		QuantitySold:     l.QuantitySold,
	}
}

func fromLines(lines []settlement.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(lines))
	for i, l := range lines {
		out[i] = fromLine(l)
	}
	return out
}

// SessionVendorResponse is a selected vendor with its lines and live totals.
type SessionVendorResponse struct {
	VendorID       string             `json:"vendorId"`
	VendorName     string             `json:"vendorName"`
	CommissionRate Rate               `json:"commissionRate"`
	Lines          []LineItemResponse `json:"lines"`
	Totals         TotalsResponse     `json:"totals"`
}

// SessionResponse is the worker's view of a session.
type SessionResponse struct {
	ID        string                  `json:"id"`
	Date      string                  `json:"date"`
	WorkerID  string                  `json:"workerId,omitempty"`
	Phase     settlement.Phase        `json:"phase"`
	Locked    bool                    `json:"locked"`
	Version   int                     `json:"version"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
	Vendors   []SessionVendorResponse `json:"vendors"`
	Totals    SessionTotalsResponse   `json:"totals"`
}

// FromSession converts a session.
func FromSession(s *settlement.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:        s.ID.String(),
		Date:      s.Date,
		WorkerID:  s.WorkerID,
		Phase:     s.Phase(),
		Locked:    s.IsLocked(),
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Vendors:   []SessionVendorResponse{},
		Totals:    FromSessionTotals(s.ComputeSessionTotals()),
	}
	for _, v := range s.Vendors() {
		lines := make([]LineItemResponse, len(v.Lines))
		for i, l := range v.Lines {
			lines[i] = fromLine(*l)
		}
		resp.Vendors = append(resp.Vendors, SessionVendorResponse{
			VendorID:       v.VendorID.String(),
			VendorName:     v.VendorName,
			CommissionRate: Rate(v.CommissionRate),
			Lines:          lines,
			Totals:         FromTotals(v.Totals()),
		})
	}
	return resp
}

// VendorTotalsResponse is one vendor's row in the totals view.
type VendorTotalsResponse struct {
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
	TotalsResponse
}

// SessionTotalsView lists per-vendor totals and their sum.
type SessionTotalsView struct {
	Vendors []VendorTotalsResponse `json:"vendors"`
	SessionTotalsResponse
}

// FromSessionTotalsView builds the totals view of a session.
func FromSessionTotalsView(s *settlement.Session) *SessionTotalsView {
	view := &SessionTotalsView{
		Vendors:               []VendorTotalsResponse{},
		SessionTotalsResponse: FromSessionTotals(s.ComputeSessionTotals()),
	}
	for _, v := range s.Vendors() {
		view.Vendors = append(view.Vendors, VendorTotalsResponse{
			VendorID:       v.VendorID.String(),
			VendorName:     v.VendorName,
			TotalsResponse: FromTotals(v.Totals()),
		})
	}
	return view
}

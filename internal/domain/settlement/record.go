package settlement

import (
	"time"

	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
)

// DailySalesRecord is the aggregate produced when a session is submitted.
type DailySalesRecord struct {
	ID           id.ID     `json:"id"`
	BusinessID   id.ID     `json:"businessId"`
	SubmissionID id.ID     `json:"submissionId"`
	Number       string    `json:"number"`
	WorkerID     string    `json:"workerId,omitempty"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`

	Vendors []VendorRecord `json:"vendors"`

	SessionTotals
}

// VendorRecord is one vendor's part of a DailySalesRecord.
// Items holds only lines with a positive sold quantity.
type VendorRecord struct {
	VendorID       id.ID         `json:"vendorId"`
	VendorName     string        `json:"vendorName"`
	CommissionRate types.Percent `json:"commissionRate"`
	Items          []LineItem    `json:"items"`

	Totals
}

// Record builds the submission aggregate. The session's ID becomes the
// submission ID, so resubmitting the same session yields the same key.
func (s *Session) Record() (*DailySalesRecord, error) {
	if err := s.CheckSubmittable(); err != nil {
		return nil, err
	}

	rec := &DailySalesRecord{
		ID:            id.New(),
		BusinessID:    s.BusinessID,
		SubmissionID:  s.ID,
		WorkerID:      s.WorkerID,
		Date:          s.Date,
		CreatedAt:     time.Now().UTC(),
		Vendors:       make([]VendorRecord, 0, len(s.Vendors())),
		SessionTotals: ZeroSessionTotals(),
	}

	for _, v := range s.Vendors() {
		vr := VendorRecord{
			VendorID:       v.VendorID,
			VendorName:     v.VendorName,
			CommissionRate: v.CommissionRate,
			Items:          []LineItem{},
			Totals:         v.Totals(),
		}
		for _, l := range v.Lines {
			if l.QuantitySold > 0 {
				vr.Items = append(vr.Items, *l)
			}
		}
		rec.Vendors = append(rec.Vendors, vr)
		rec.SessionTotals = rec.SessionTotals.Add(vr.Totals)
	}

	return rec, nil
}

// SoldByItem sums sold quantities per item across vendors.
func (r *DailySalesRecord) SoldByItem() map[id.ID]int64 {
	sold := make(map[id.ID]int64)
	for _, v := range r.Vendors {
		for _, l := range v.Items {
			sold[l.ItemID] += l.QuantitySold
		}
	}
	return sold
}

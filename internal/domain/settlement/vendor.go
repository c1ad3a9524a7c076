package settlement

import (
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
)

// VendorRef is the registry snapshot taken when a vendor is selected.
type VendorRef struct {
	ID             id.ID
	Name           string
	CommissionRate types.Percent
}

// VendorSettlement holds one selected vendor's lines in catalog order of first entry.
type VendorSettlement struct {
	VendorID       id.ID         `json:"vendorId"`
	VendorName     string        `json:"vendorName"`
	CommissionRate types.Percent `json:"commissionRate"`
	Lines          []*LineItem   `json:"lines"`
}

func newVendorSettlement(v VendorRef) *VendorSettlement {
	return &VendorSettlement{
		VendorID:       v.ID,
		VendorName:     v.Name,
		CommissionRate: v.CommissionRate,
		Lines:          []*LineItem{},
	}
}

// Line returns the line for itemID, or nil.
func (v *VendorSettlement) Line(itemID id.ID) *LineItem {
	for _, l := range v.Lines {
		if l.ItemID == itemID {
			return l
		}
	}
	return nil
}

func (v *VendorSettlement) lineFor(item ItemRef) *LineItem {
	if l := v.Line(item.ID); l != nil {
		return l
	}
	l := newLine(item)
	v.Lines = append(v.Lines, l)
	return l
}

// Totals derives this vendor's financial results.
func (v *VendorSettlement) Totals() Totals {
	return ComputeTotals(v.Lines, v.CommissionRate)
}

// TakenAny reports whether any line has a positive taken quantity.
func (v *VendorSettlement) TakenAny() bool {
	for _, l := range v.Lines {
		if l.QuantityTaken > 0 {
			return true
		}
	}
	return false
}

func (v *VendorSettlement) clone() *VendorSettlement {
	c := *v
	c.Lines = make([]*LineItem, len(v.Lines))
	for i, l := range v.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}

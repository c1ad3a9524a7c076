package settlement

import (
	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
)

// Morning is the open stage: vendors are picked and taken quantities entered.
type Morning struct {
	vendors []*VendorSettlement
}

// Vendors returns the selected vendors in selection order.
func (m *Morning) Vendors() []*VendorSettlement { return m.vendors }

func (m *Morning) vendor(vendorID id.ID) *VendorSettlement {
	return findVendor(m.vendors, vendorID)
}

// SelectVendor adds a vendor to the selection. Selecting twice is a no-op.
func (m *Morning) SelectVendor(v VendorRef) bool {
	if m.vendor(v.ID) != nil {
		return false
	}
	m.vendors = append(m.vendors, newVendorSettlement(v))
	return true
}

// DeselectVendor drops a vendor and its lines.
func (m *Morning) DeselectVendor(vendorID id.ID) bool {
	for i, v := range m.vendors {
		if v.VendorID == vendorID {
			m.vendors = append(m.vendors[:i], m.vendors[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuantityTaken records what a selected vendor took of an item.
// Negative quantities become zero. Unselected vendors are ignored.
func (m *Morning) SetQuantityTaken(vendorID id.ID, item ItemRef, qty int64) bool {
	v := m.vendor(vendorID)
	if v == nil {
		return false
	}
	v.lineFor(item).setTaken(qty)
	return true
}

// Lock freezes the selection and taken quantities and opens the evening stage.
// The morning stage must not be used afterwards.
func (m *Morning) Lock() (*Evening, error) {
	for _, v := range m.vendors {
		if v.TakenAny() {
			e := &Evening{vendors: m.vendors}
			m.vendors = nil
			return e, nil
		}
	}
	return nil, ErrNoItemsTaken()
}

// Evening is the locked stage: only returned quantities change.
type Evening struct {
	vendors []*VendorSettlement
}

// Vendors returns the frozen vendor selection.
func (e *Evening) Vendors() []*VendorSettlement { return e.vendors }

// SetQuantityReturned records what a vendor brought back. Negative becomes zero.
// Returned is not clamped to taken; sold floors at zero instead.
func (e *Evening) SetQuantityReturned(vendorID, itemID id.ID, qty int64) error {
	v := findVendor(e.vendors, vendorID)
	if v == nil {
		return apperror.NewNotFound("session vendor", vendorID.String())
	}
	l := v.Line(itemID)
	if l == nil {
		return apperror.NewNotFound("session item", itemID.String()).
			WithDetail("vendorId", vendorID.String())
	}
	l.setReturned(qty)
	return nil
}

func findVendor(vendors []*VendorSettlement, vendorID id.ID) *VendorSettlement {
	for _, v := range vendors {
		if v.VendorID == vendorID {
			return v
		}
	}
	return nil
}

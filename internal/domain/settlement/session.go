package settlement

import (
	"encoding/json"
	"fmt"
	"time"

	"vendorbook/internal/core/id"
)

// Phase names the stage a session is in.
type Phase string

const (
	PhaseOpen   Phase = "open"
	PhaseLocked Phase = "locked"
)

// DateLayout is the calendar date format used for sessions and records.
const DateLayout = "2006-01-02"

// Session is one worker's recording sitting for one business day.
// It holds exactly one stage: Morning until locked, Evening afterwards.
type Session struct {
	ID         id.ID
	BusinessID id.ID
	WorkerID   string
	Date       string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time

	morning *Morning
	evening *Evening
}

// NewSession starts an open session for the given day.
func NewSession(businessID id.ID, workerID string, date time.Time) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id.New(),
		BusinessID: businessID,
		WorkerID:   workerID,
		Date:       date.Format(DateLayout),
		CreatedAt:  now,
		UpdatedAt:  now,
		morning:    &Morning{},
	}
}

// Phase reports the current stage.
func (s *Session) Phase() Phase {
	if s.evening != nil {
		return PhaseLocked
	}
	return PhaseOpen
}

// IsLocked reports whether the morning stock has been locked.
func (s *Session) IsLocked() bool { return s.evening != nil }

// Morning returns the open stage, if the session is still open.
func (s *Session) Morning() (*Morning, bool) { return s.morning, s.evening == nil }

// Evening returns the locked stage, if the session is locked.
func (s *Session) Evening() (*Evening, bool) { return s.evening, s.evening != nil }

// Vendors returns the selected vendors in selection order.
func (s *Session) Vendors() []*VendorSettlement {
	if s.evening != nil {
		return s.evening.vendors
	}
	return s.morning.vendors
}

// Vendor returns a selected vendor's settlement, or nil.
func (s *Session) Vendor(vendorID id.ID) *VendorSettlement {
	return findVendor(s.Vendors(), vendorID)
}

// SelectVendor adds a vendor while open. Returns false when locked or already selected.
func (s *Session) SelectVendor(v VendorRef) bool {
	if m, ok := s.Morning(); ok {
		return m.SelectVendor(v)
	}
	return false
}

// DeselectVendor removes a vendor while open. Returns false when locked or not selected.
func (s *Session) DeselectVendor(vendorID id.ID) bool {
	if m, ok := s.Morning(); ok {
		return m.DeselectVendor(vendorID)
	}
	return false
}

// SetQuantityTaken sets a taken quantity. It is a no-op returning false when the
// session is locked or the vendor is not selected.
func (s *Session) SetQuantityTaken(vendorID id.ID, item ItemRef, qty int64) bool {
	if m, ok := s.Morning(); ok {
		return m.SetQuantityTaken(vendorID, item, qty)
	}
	return false
}

// Lock moves the session to the evening stage. On failure the session stays open.
func (s *Session) Lock() error {
	m, ok := s.Morning()
	if !ok {
		return nil
	}
	e, err := m.Lock()
	if err != nil {
		return err
	}
	s.evening = e
	s.morning = nil
	return nil
}

// SetQuantityReturned sets a returned quantity. Only allowed once locked.
func (s *Session) SetQuantityReturned(vendorID, itemID id.ID, qty int64) error {
	e, ok := s.Evening()
	if !ok {
		return ErrNotLocked()
	}
	return e.SetQuantityReturned(vendorID, itemID, qty)
}

// ComputeVendorTotals derives one selected vendor's totals.
func (s *Session) ComputeVendorTotals(vendorID id.ID) (Totals, bool) {
	v := s.Vendor(vendorID)
	if v == nil {
		return Totals{}, false
	}
	return v.Totals(), true
}

// ComputeSessionTotals sums vendor totals across the selection.
func (s *Session) ComputeSessionTotals() SessionTotals {
	total := ZeroSessionTotals()
	for _, v := range s.Vendors() {
		total = total.Add(v.Totals())
	}
	return total
}

// CheckSubmittable reports why the session cannot be submitted yet.
func (s *Session) CheckSubmittable() error {
	if len(s.Vendors()) == 0 {
		return ErrNoVendorSelected()
	}
	if !s.IsLocked() {
		return ErrNotLocked()
	}
	return nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	vendors := make([]*VendorSettlement, len(s.Vendors()))
	for i, v := range s.Vendors() {
		vendors[i] = v.clone()
	}
	if s.evening != nil {
		c.evening = &Evening{vendors: vendors}
		c.morning = nil
	} else {
		c.morning = &Morning{vendors: vendors}
		c.evening = nil
	}
	return &c
}

type sessionSnapshot struct {
	ID         id.ID               `json:"id"`
	BusinessID id.ID               `json:"businessId"`
	WorkerID   string              `json:"workerId"`
	Date       string              `json:"date"`
	Phase      Phase               `json:"phase"`
	Version    int                 `json:"version"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Vendors    []*VendorSettlement `json:"vendors"`
}

// MarshalJSON encodes the session with its phase tag.
func (s *Session) MarshalJSON() ([]byte, error) {
	vendors := s.Vendors()
	if vendors == nil {
		vendors = []*VendorSettlement{}
	}
	return json.Marshal(sessionSnapshot{
		ID:         s.ID,
		BusinessID: s.BusinessID,
		WorkerID:   s.WorkerID,
		Date:       s.Date,
		Phase:      s.Phase(),
		Version:    s.Version,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Vendors:    vendors,
	})
}

// UnmarshalJSON restores the stage named by the phase tag.
func (s *Session) UnmarshalJSON(data []byte) error {
	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	*s = Session{
		ID:         snap.ID,
		BusinessID: snap.BusinessID,
		WorkerID:   snap.WorkerID,
		Date:       snap.Date,
		Version:    snap.Version,
		CreatedAt:  snap.CreatedAt,
		UpdatedAt:  snap.UpdatedAt,
	}
	switch snap.Phase {
	case PhaseOpen, "":
		s.morning = &Morning{vendors: snap.Vendors}
	case PhaseLocked:
		s.evening = &Evening{vendors: snap.Vendors}
	default:
		return fmt.Errorf("unknown session phase %q", snap.Phase)
	}
	return nil
}

package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vendorbook/internal/core/apperror"
	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/core/id"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/catalogs/item"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/pkg/logger"
)

// ItemLookup resolves catalog items.
type ItemLookup interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// VendorLookup resolves and registers vendors.
type VendorLookup interface {
	GetByID(ctx context.Context, vendorID id.ID) (*vendor.Vendor, error)
	CreateAdHoc(ctx context.Context, in vendor.AdHocInput) (*vendor.Vendor, error)
}

// Observer receives session lifecycle events.
type Observer interface {
	SessionStarted()
	SessionLocked()
	RecordSubmitted(rec *DailySalesRecord, created bool)
}

type nopObserver struct{}

func (nopObserver) SessionStarted()                         {}
func (nopObserver) SessionLocked()                          {}
func (nopObserver) RecordSubmitted(*DailySalesRecord, bool) {}

// Config wires the settlement service.
type Config struct {
	Store    SessionStore
	Items    ItemLookup
	Vendors  VendorLookup
	Sink     RecordSink
	Observer Observer
	Now      func() time.Time
}

// Service drives sessions stored between requests.
type Service struct {
	store    SessionStore
	items    ItemLookup
	vendors  VendorLookup
	sink     RecordSink
	observer Observer
	now      func() time.Time
}

// NewService creates a settlement service.
func NewService(cfg Config) *Service {
	svc := &Service{
		store:    cfg.Store,
		items:    cfg.Items,
		vendors:  cfg.Vendors,
		sink:     cfg.Sink,
		observer: cfg.Observer,
		now:      cfg.Now,
	}
	if svc.observer == nil {
		svc.observer = nopObserver{}
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Start opens a session for the caller. An empty date means today.
func (s *Service) Start(ctx context.Context, date string) (*Session, error) {
	businessID, err := domain.BusinessFromContext(ctx)
	if err != nil {
		return nil, err
	}

	day := s.now().UTC()
	if date = strings.TrimSpace(date); date != "" {
		day, err = time.Parse(DateLayout, date)
		if err != nil {
			return nil, apperror.NewValidation("invalid date").
				WithDetail("field", "date").
				WithDetail("value", date)
		}
	}

	sess := NewSession(businessID, appctx.GetUserID(ctx), day)
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.observer.SessionStarted()
	logger.Info(ctx, "settlement session started", "session_id", sess.ID, "date", sess.Date)
	return sess, nil
}

// Get loads a session the caller may access.
func (s *Service) Get(ctx context.Context, sessionID id.ID) (*Session, error) {
	businessID, err := domain.BusinessFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.Get(ctx, businessID, sessionID)
	if err != nil {
		return nil, err
	}

	userID := appctx.GetUserID(ctx)
	if sess.WorkerID != "" && sess.WorkerID != userID && !appctx.HasRole(ctx, appctx.RoleOwner) {
		return nil, apperror.NewForbidden("session belongs to another worker")
	}
	return sess, nil
}

func (s *Service) mutate(ctx context.Context, sessionID id.ID, fn func(ctx context.Context, sess *Session) error) (*Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, sess); err != nil {
		return nil, err
	}

	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SelectVendor adds an existing active vendor to an open session.
func (s *Service) SelectVendor(ctx context.Context, sessionID, vendorID id.ID) (*Session, error) {
	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *Session) error {
		if sess.IsLocked() {
			return ErrLocked()
		}
		v, err := s.vendors.GetByID(ctx, vendorID)
		if err != nil {
			return err
		}
		if !v.IsActive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "vendor is inactive").
				WithDetail("vendorId", vendorID.String())
		}
		sess.SelectVendor(vendorRef(v))
		return nil
	})
}

// SelectAdHocVendor registers a new vendor and adds it to an open session.
func (s *Service) SelectAdHocVendor(ctx context.Context, sessionID id.ID, in vendor.AdHocInput) (*Session, *vendor.Vendor, error) {
	var created *vendor.Vendor
	sess, err := s.mutate(ctx, sessionID, func(ctx context.Context, sess *Session) error {
		if sess.IsLocked() {
			return ErrLocked()
		}
		v, err := s.vendors.CreateAdHoc(ctx, in)
		if err != nil {
			return err
		}
		created = v
		sess.SelectVendor(vendorRef(v))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, created, nil
}

// DeselectVendor removes a vendor from an open session.
func (s *Service) DeselectVendor(ctx context.Context, sessionID, vendorID id.ID) (*Session, error) {
	return s.mutate(ctx, sessionID, func(_ context.Context, sess *Session) error {
		if sess.IsLocked() {
			return ErrLocked()
		}
		if !sess.DeselectVendor(vendorID) {
			return apperror.NewNotFound("session vendor", vendorID.String())
		}
		return nil
	})
}

// SetQuantityTaken records a morning quantity. Price and cost are copied from
// the catalog the first time an item appears for a vendor.
func (s *Service) SetQuantityTaken(ctx context.Context, sessionID, vendorID, itemID id.ID, qty int64) (*Session, error) {
	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *Session) error {
		if sess.IsLocked() {
			return ErrLocked()
		}
		v := sess.Vendor(vendorID)
		if v == nil {
			return apperror.NewNotFound("session vendor", vendorID.String())
		}

		ref := ItemRef{ID: itemID}
		if l := v.Line(itemID); l == nil {
			it, err := s.items.GetByID(ctx, itemID)
			if err != nil {
				return err
			}
			ref = itemRef(it)
		}
		sess.SetQuantityTaken(vendorID, ref, qty)
		return nil
	})
}

// Lock freezes morning stock.
func (s *Service) Lock(ctx context.Context, sessionID id.ID) (*Session, error) {
	sess, err := s.mutate(ctx, sessionID, func(_ context.Context, sess *Session) error {
		if sess.IsLocked() {
			return ErrLocked()
		}
		return sess.Lock()
	})
	if err != nil {
		return nil, err
	}

	s.observer.SessionLocked()
	logger.Info(ctx, "morning stock locked", "session_id", sessionID, "vendors", len(sess.Vendors()))
	return sess, nil
}

// SetQuantityReturned records an evening quantity.
func (s *Service) SetQuantityReturned(ctx context.Context, sessionID, vendorID, itemID id.ID, qty int64) (*Session, error) {
	return s.mutate(ctx, sessionID, func(_ context.Context, sess *Session) error {
		return sess.SetQuantityReturned(vendorID, itemID, qty)
	})
}

// Submit hands the session's record to the sink and ends the session.
// When the sink fails the session is kept so the worker can retry. Submitting
// an already finished session returns the record stored for it.
func (s *Service) Submit(ctx context.Context, sessionID id.ID) (*DailySalesRecord, error) {
	sess, err := s.Get(ctx, sessionID)
	if apperror.IsNotFound(err) {
		if prev, findErr := s.sink.FindBySubmission(ctx, sessionID); findErr == nil {
			logger.Info(ctx, "daily sales already submitted", "session_id", sessionID, "record", prev.Number)
			return prev, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	rec, err := sess.Record()
	if err != nil {
		return nil, err
	}

	saved, created, err := s.sink.SaveRecord(ctx, rec)
	if err != nil {
		logger.Error(ctx, "daily sales submission failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	if err := s.store.Delete(ctx, sess.BusinessID, sess.ID); err != nil {
		logger.Warn(ctx, "submitted session not cleared", "session_id", sessionID, "error", err)
	}

	s.observer.RecordSubmitted(saved, created)
	logger.Info(ctx, "daily sales submitted",
		"session_id", sessionID,
		"record", saved.Number,
		"created", created,
		"revenue", saved.TotalRevenue.String(),
	)
	return saved, nil
}

func vendorRef(v *vendor.Vendor) VendorRef {
	return VendorRef{ID: v.ID, Name: v.Name, CommissionRate: v.CommissionRate}
}

func itemRef(it *item.Item) ItemRef {
	return ItemRef{
		ID:        it.ID,
		Name:      it.Name,
		Category:  it.Category,
		UnitPrice: it.UnitPrice,
		UnitCost:  it.UnitCost,
	}
}

package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorbook/internal/core/apperror"
	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/catalogs/item"
	"vendorbook/internal/domain/catalogs/vendor"
)

type fakeItems map[id.ID]*item.Item

func (f fakeItems) GetByID(_ context.Context, itemID id.ID) (*item.Item, error) {
	if it, ok := f[itemID]; ok {
		return it, nil
	}
	return nil, apperror.NewNotFound("item", itemID.String())
}

type fakeVendors struct {
	byID map[id.ID]*vendor.Vendor
}

func (f *fakeVendors) GetByID(_ context.Context, vendorID id.ID) (*vendor.Vendor, error) {
	if v, ok := f.byID[vendorID]; ok {
		return v, nil
	}
	return nil, apperror.NewNotFound("vendor", vendorID.String())
}

func (f *fakeVendors) CreateAdHoc(_ context.Context, in vendor.AdHocInput) (*vendor.Vendor, error) {
	v, err := vendor.NewAdHoc(in)
	if err != nil {
		return nil, err
	}
	f.byID[v.ID] = v
	return v, nil
}

type fakeSink struct {
	mu      sync.Mutex
	records map[id.ID]*DailySalesRecord
	fail    error
}

func (f *fakeSink) SaveRecord(_ context.Context, rec *DailySalesRecord) (*DailySalesRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, false, f.fail
	}
	if prev, ok := f.records[rec.SubmissionID]; ok {
		return prev, false, nil
	}
	rec.Number = "DS-2024-00001"
	f.records[rec.SubmissionID] = rec
	return rec, true, nil
}

func (f *fakeSink) FindBySubmission(_ context.Context, submissionID id.ID) (*DailySalesRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[submissionID]; ok {
		return rec, nil
	}
	return nil, apperror.NewNotFound("daily sales record", submissionID.String())
}

type fixture struct {
	svc     *Service
	store   *MemoryStore
	sink    *fakeSink
	ctx     context.Context
	scoops  *vendor.Vendor
	corner  *vendor.Vendor
	cornett *item.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	businessID := id.New()
	scoops := vendor.NewVendor("Sweet Scoops", types.MustMoney("8.5"))
	corner := vendor.NewVendor("Cone Corner", types.MustMoney("6.5"))
	corner.Status = vendor.StatusInactive
	cornett := item.NewItem("Vanilla Cornetto", "Cones", types.MustMoney("3.50"), types.MustMoney("2.00"))

	f := &fixture{
		store:   NewMemoryStore(),
		sink:    &fakeSink{records: map[id.ID]*DailySalesRecord{}},
		scoops:  scoops,
		corner:  corner,
		cornett: cornett,
		ctx: appctx.WithUser(context.Background(), &appctx.UserContext{
			UserID:     "worker-1",
			BusinessID: businessID.String(),
			Roles:      []string{appctx.RoleWorker},
		}),
	}
	f.svc = NewService(Config{
		Store:   f.store,
		Items:   fakeItems{cornett.ID: cornett},
		Vendors: &fakeVendors{byID: map[id.ID]*vendor.Vendor{scoops.ID: scoops, corner.ID: corner}},
		Sink:    f.sink,
		Now:     func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	})
	return f
}

func TestService_FullDay(t *testing.T) {
	f := newFixture(t)

	sess, err := f.svc.Start(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", sess.Date)
	assert.Equal(t, "worker-1", sess.WorkerID)

	_, err = f.svc.SelectVendor(f.ctx, sess.ID, f.scoops.ID)
	require.NoError(t, err)
	_, err = f.svc.SetQuantityTaken(f.ctx, sess.ID, f.scoops.ID, f.cornett.ID, 20)
	require.NoError(t, err)

	// catalog price changes do not reach the session
	f.cornett.UnitPrice = types.MustMoney("5.00")

	_, err = f.svc.Lock(f.ctx, sess.ID)
	require.NoError(t, err)
	got, err := f.svc.SetQuantityReturned(f.ctx, sess.ID, f.scoops.ID, f.cornett.ID, 2)
	require.NoError(t, err)
	assertMoney(t, "63.00", got.ComputeSessionTotals().TotalRevenue, "revenue")

	rec, err := f.svc.Submit(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, rec.SubmissionID)
	assertMoney(t, "21.645", rec.TotalNetProfit, "net")

	_, err = f.svc.Get(f.ctx, sess.ID)
	assert.True(t, apperror.IsNotFound(err))

	again, err := f.svc.Submit(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Len(t, f.sink.records, 1)
}

func TestService_MorningEditsAfterLock(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Start(f.ctx, "2024-06-02")
	require.NoError(t, err)

	_, err = f.svc.SelectVendor(f.ctx, sess.ID, f.scoops.ID)
	require.NoError(t, err)
	_, err = f.svc.SetQuantityTaken(f.ctx, sess.ID, f.scoops.ID, f.cornett.ID, 3)
	require.NoError(t, err)
	_, err = f.svc.Lock(f.ctx, sess.ID)
	require.NoError(t, err)

	_, err = f.svc.SetQuantityTaken(f.ctx, sess.ID, f.scoops.ID, f.cornett.ID, 9)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSessionLocked, appErr.Code)

	_, err = f.svc.Lock(f.ctx, sess.ID)
	assert.Error(t, err)

	stored, err := f.svc.Get(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Vendor(f.scoops.ID).Line(f.cornett.ID).QuantityTaken)
}

func TestService_Validation(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Start(f.ctx, "")
	require.NoError(t, err)

	_, err = f.svc.Submit(f.ctx, sess.ID)
	requireValidation(t, err, "no vendor selected")

	_, err = f.svc.Lock(f.ctx, sess.ID)
	requireValidation(t, err, "no items taken")

	_, err = f.svc.SelectVendor(f.ctx, sess.ID, f.corner.ID)
	assert.Error(t, err, "inactive vendors cannot be selected")

	_, err = f.svc.SelectVendor(f.ctx, sess.ID, f.scoops.ID)
	require.NoError(t, err)
	_, err = f.svc.Submit(f.ctx, sess.ID)
	requireValidation(t, err, "morning stock not locked")

	_, err = f.svc.SetQuantityTaken(f.ctx, sess.ID, f.scoops.ID, id.New(), 1)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Start(f.ctx, "01/06/2024")
	requireValidation(t, err, "invalid date")
}

func TestService_AdHocVendor(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Start(f.ctx, "")
	require.NoError(t, err)

	_, _, err = f.svc.SelectAdHocVendor(f.ctx, sess.ID, vendor.AdHocInput{Name: "Pop Up", CommissionRate: json.RawMessage(`"150"`)})
	requireValidation(t, err, "invalid commission rate")

	got, v, err := f.svc.SelectAdHocVendor(f.ctx, sess.ID, vendor.AdHocInput{Name: "Pop Up", CommissionRate: json.RawMessage(`5`)})
	require.NoError(t, err)
	require.NotNil(t, got.Vendor(v.ID))
	assert.Equal(t, "Pop Up", got.Vendor(v.ID).VendorName)
}

func TestService_SubmitFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Start(f.ctx, "")
	require.NoError(t, err)
	_, err = f.svc.SelectVendor(f.ctx, sess.ID, f.scoops.ID)
	require.NoError(t, err)
	_, err = f.svc.SetQuantityTaken(f.ctx, sess.ID, f.scoops.ID, f.cornett.ID, 4)
	require.NoError(t, err)
	_, err = f.svc.Lock(f.ctx, sess.ID)
	require.NoError(t, err)

	f.sink.fail = errors.New("database unavailable")
	_, err = f.svc.Submit(f.ctx, sess.ID)
	require.Error(t, err)

	kept, err := f.svc.Get(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsLocked())

	f.sink.fail = nil
	rec, err := f.svc.Submit(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, rec.SubmissionID)
}

func TestService_SessionAccess(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Start(f.ctx, "")
	require.NoError(t, err)

	user := appctx.GetUser(f.ctx)
	other := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "worker-2", BusinessID: user.BusinessID, Roles: []string{appctx.RoleWorker},
	})
	_, err = f.svc.Get(other, sess.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	owner := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "owner-1", BusinessID: user.BusinessID, Roles: []string{appctx.RoleOwner},
	})
	_, err = f.svc.Get(owner, sess.ID)
	assert.NoError(t, err)

	otherBusiness := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "worker-1", BusinessID: id.New().String(), Roles: []string{appctx.RoleWorker},
	})
	_, err = f.svc.Get(otherBusiness, sess.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Start(context.Background(), "")
	assert.Error(t, err)
}

func TestMemoryStore_RejectsStaleSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := newTestSession()
	require.NoError(t, store.Create(ctx, s))

	a, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)
	b, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)

	a.SelectVendor(sweetScoops)
	require.NoError(t, store.Save(ctx, a))

	b.SelectVendor(frozenDelights)
	err = store.Save(ctx, b)
	assert.True(t, apperror.IsConcurrentModification(err))

	stored, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.NotNil(t, stored.Vendor(sweetScoops.ID))
	assert.Nil(t, stored.Vendor(frozenDelights.ID))
}

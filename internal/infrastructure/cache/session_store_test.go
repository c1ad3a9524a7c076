package cache_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/infrastructure/cache"
)

func newStore(t *testing.T) (*cache.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewSessionStore(client, "", time.Hour), mr
}

func lockedSession(t *testing.T) *settlement.Session {
	t.Helper()
	s := settlement.NewSession(id.New(), "worker-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	v := settlement.VendorRef{ID: id.New(), Name: "Sweet Scoops", CommissionRate: types.MustMoney("8.5")}
	it := settlement.ItemRef{ID: id.New(), Name: "Vanilla Cornetto", UnitPrice: types.MustMoney("3.50"), UnitCost: types.MustMoney("2.00")}
	require.True(t, s.SelectVendor(v))
	require.True(t, s.SetQuantityTaken(v.ID, it, 20))
	require.NoError(t, s.Lock())
	require.NoError(t, s.SetQuantityReturned(v.ID, it.ID, 5))
	return s
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)
	s := lockedSession(t)

	require.NoError(t, store.Create(ctx, s))
	assert.Equal(t, 1, s.Version)
	assert.Equal(t, time.Hour, mr.TTL("vendorbook:session:"+s.BusinessID.String()+":"+s.ID.String()))

	got, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLocked())
	assert.Equal(t, 1, got.Version)

	totals, ok := got.ComputeVendorTotals(s.Vendors()[0].VendorID)
	require.True(t, ok)
	assert.Equal(t, "52.5", totals.Revenue.String())

	t.Run("create twice conflicts", func(t *testing.T) {
		err := store.Create(ctx, s)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("other business cannot see it", func(t *testing.T) {
		_, err := store.Get(ctx, id.New(), s.ID)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestSessionStore_SaveVersioning(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	s := settlement.NewSession(id.New(), "w", time.Now())
	require.NoError(t, store.Create(ctx, s))

	a, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)
	b, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)

	a.SelectVendor(settlement.VendorRef{ID: id.New(), Name: "A", CommissionRate: types.Zero()})
	require.NoError(t, store.Save(ctx, a))
	assert.Equal(t, 2, a.Version)

	b.SelectVendor(settlement.VendorRef{ID: id.New(), Name: "B", CommissionRate: types.Zero()})
	err = store.Save(ctx, b)
	assert.True(t, apperror.IsConcurrentModification(err))

	got, err := store.Get(ctx, s.BusinessID, s.ID)
	require.NoError(t, err)
	require.Len(t, got.Vendors(), 1)
	assert.Equal(t, "A", got.Vendors()[0].VendorName)
}

func TestSessionStore_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)
	s := settlement.NewSession(id.New(), "w", time.Now())

	assert.True(t, apperror.IsNotFound(store.Save(ctx, s)))

	require.NoError(t, store.Create(ctx, s))
	require.NoError(t, store.Delete(ctx, s.BusinessID, s.ID))
	require.NoError(t, store.Delete(ctx, s.BusinessID, s.ID))
	_, err := store.Get(ctx, s.BusinessID, s.ID)
	assert.True(t, apperror.IsNotFound(err))

	t.Run("expires", func(t *testing.T) {
		s := settlement.NewSession(id.New(), "w", time.Now())
		require.NoError(t, store.Create(ctx, s))
		mr.FastForward(2 * time.Hour)
		_, err := store.Get(ctx, s.BusinessID, s.ID)
		assert.True(t, apperror.IsNotFound(err))
	})
}

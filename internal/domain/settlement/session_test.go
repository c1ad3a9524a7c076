package settlement

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
)

var (
	cornetto = ItemRef{ID: id.New(), Name: "Vanilla Cornetto", Category: "Cones", UnitPrice: types.MustMoney("3.50"), UnitCost: types.MustMoney("2.00")}
	choco    = ItemRef{ID: id.New(), Name: "Chocolate Bar", Category: "Bars", UnitPrice: types.MustMoney("4.00"), UnitCost: types.MustMoney("2.50")}

	sweetScoops    = VendorRef{ID: id.New(), Name: "Sweet Scoops", CommissionRate: types.MustMoney("8.5")}
	frozenDelights = VendorRef{ID: id.New(), Name: "Frozen Delights", CommissionRate: types.MustMoney("7")}
)

func assertMoney(t *testing.T, want string, got types.Money, field string) {
	t.Helper()
	assert.True(t, got.Equal(types.MustMoney(want)), "%s: want %s, got %s", field, want, got.String())
}

func newTestSession() *Session {
	return NewSession(id.New(), "worker-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
}

func requireValidation(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, msg, appErr.Message)
}

func TestSoldQuantity(t *testing.T) {
	for taken := int64(0); taken <= 6; taken++ {
		for returned := int64(0); returned <= 6; returned++ {
			got := SoldQuantity(taken, returned)
			if taken >= returned {
				assert.Equal(t, taken-returned, got, "taken=%d returned=%d", taken, returned)
			} else {
				assert.Zero(t, got, "taken=%d returned=%d", taken, returned)
			}
		}
	}
}

func TestSession_SingleVendorSettlement(t *testing.T) {
	s := newTestSession()
	require.True(t, s.SelectVendor(sweetScoops))
	require.True(t, s.SetQuantityTaken(sweetScoops.ID, cornetto, 20))
	require.NoError(t, s.Lock())
	require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 2))

	line := s.Vendor(sweetScoops.ID).Line(cornetto.ID)
	require.NotNil(t, line)
	assert.Equal(t, int64(18), line.QuantitySold)

	totals, ok := s.ComputeVendorTotals(sweetScoops.ID)
	require.True(t, ok)
	assertMoney(t, "63.00", totals.Revenue, "revenue")
	assertMoney(t, "36.00", totals.Cost, "cost")
	assertMoney(t, "27.00", totals.GrossProfit, "gross")
	assertMoney(t, "5.355", totals.Commission, "commission")
	assertMoney(t, "21.645", totals.NetProfit, "net")
}

func TestSession_FullyReturnedVendorContributesNothing(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)
	s.SelectVendor(frozenDelights)
	s.SetQuantityTaken(sweetScoops.ID, cornetto, 20)
	s.SetQuantityTaken(frozenDelights.ID, choco, 10)
	require.NoError(t, s.Lock())
	require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 2))
	require.NoError(t, s.SetQuantityReturned(frozenDelights.ID, choco.ID, 10))

	b, _ := s.ComputeVendorTotals(frozenDelights.ID)
	assert.True(t, b.Revenue.IsZero())
	assert.True(t, b.NetProfit.IsZero())

	a, _ := s.ComputeVendorTotals(sweetScoops.ID)
	total := s.ComputeSessionTotals()
	assert.True(t, total.TotalRevenue.Equal(a.Revenue))
	assert.True(t, total.TotalCost.Equal(a.Cost))
	assert.True(t, total.GrossProfit.Equal(a.GrossProfit))
	assert.True(t, total.TotalVendorCommission.Equal(a.Commission))
	assert.True(t, total.TotalNetProfit.Equal(a.NetProfit))
}

func TestSession_LockWithNothingTaken(t *testing.T) {
	t.Run("no vendors", func(t *testing.T) {
		s := newTestSession()
		requireValidation(t, s.Lock(), "no items taken")
		assert.Equal(t, PhaseOpen, s.Phase())
	})

	t.Run("vendors with zero quantities", func(t *testing.T) {
		s := newTestSession()
		s.SelectVendor(sweetScoops)
		s.SetQuantityTaken(sweetScoops.ID, cornetto, 0)
		requireValidation(t, s.Lock(), "no items taken")
		assert.False(t, s.IsLocked())

		// still editable after the failed lock
		assert.True(t, s.SetQuantityTaken(sweetScoops.ID, cornetto, 3))
		require.NoError(t, s.Lock())
		assert.Equal(t, PhaseLocked, s.Phase())
	})
}

func TestSession_LockedFreezesMorning(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)
	s.SetQuantityTaken(sweetScoops.ID, cornetto, 20)
	require.NoError(t, s.Lock())

	assert.False(t, s.SetQuantityTaken(sweetScoops.ID, cornetto, 99))
	assert.False(t, s.SetQuantityTaken(sweetScoops.ID, choco, 5))
	assert.False(t, s.SelectVendor(frozenDelights))
	assert.False(t, s.DeselectVendor(sweetScoops.ID))

	require.Len(t, s.Vendors(), 1)
	v := s.Vendor(sweetScoops.ID)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, int64(20), v.Lines[0].QuantityTaken)

	_, ok := s.Morning()
	assert.False(t, ok)

	require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 5))
	assert.Equal(t, int64(15), v.Lines[0].QuantitySold)
}

func TestSession_ReturnedRequiresLock(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)
	s.SetQuantityTaken(sweetScoops.ID, cornetto, 4)

	requireValidation(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 1), "morning stock not locked")
	assert.Equal(t, int64(0), s.Vendor(sweetScoops.ID).Line(cornetto.ID).QuantityReturned)
}

func TestSession_QuantityCoercion(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)

	s.SetQuantityTaken(sweetScoops.ID, cornetto, -5)
	line := s.Vendor(sweetScoops.ID).Line(cornetto.ID)
	assert.Equal(t, int64(0), line.QuantityTaken)

	s.SetQuantityTaken(sweetScoops.ID, cornetto, 10)
	require.NoError(t, s.Lock())

	require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, -3))
	assert.Equal(t, int64(0), line.QuantityReturned)
	assert.Equal(t, int64(10), line.QuantitySold)

	// returned above taken is stored as entered; sold floors at zero
	require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 12))
	assert.Equal(t, int64(12), line.QuantityReturned)
	assert.Equal(t, int64(0), line.QuantitySold)
}

func TestSession_TakenForUnselectedVendorIsIgnored(t *testing.T) {
	s := newTestSession()
	assert.False(t, s.SetQuantityTaken(sweetScoops.ID, cornetto, 5))
	assert.Empty(t, s.Vendors())
}

func TestSession_ItemSnapshotIsKept(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)
	s.SetQuantityTaken(sweetScoops.ID, cornetto, 1)

	repriced := cornetto
	repriced.UnitPrice = types.MustMoney("9.99")
	s.SetQuantityTaken(sweetScoops.ID, repriced, 2)

	line := s.Vendor(sweetScoops.ID).Line(cornetto.ID)
	assertMoney(t, "3.50", line.UnitPrice, "price")
	assert.Equal(t, int64(2), line.QuantityTaken)
}

func TestSession_SelectionOrderAndDeselect(t *testing.T) {
	s := newTestSession()
	assert.True(t, s.SelectVendor(sweetScoops))
	assert.False(t, s.SelectVendor(sweetScoops))
	assert.True(t, s.SelectVendor(frozenDelights))
	s.SetQuantityTaken(frozenDelights.ID, choco, 3)

	require.Len(t, s.Vendors(), 2)
	assert.Equal(t, sweetScoops.ID, s.Vendors()[0].VendorID)

	assert.True(t, s.DeselectVendor(frozenDelights.ID))
	assert.False(t, s.DeselectVendor(frozenDelights.ID))
	assert.Nil(t, s.Vendor(frozenDelights.ID))

	// reselecting starts with no lines
	s.SelectVendor(frozenDelights)
	assert.Empty(t, s.Vendor(frozenDelights.ID).Lines)
}

func TestComputeSessionTotals_SumOfVendors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		total := newTestSession().ComputeSessionTotals()
		assert.True(t, total.TotalRevenue.IsZero())
		assert.True(t, total.TotalNetProfit.IsZero())
	})

	t.Run("many vendors", func(t *testing.T) {
		s := newTestSession()
		vendors := []VendorRef{sweetScoops, frozenDelights, {ID: id.New(), Name: "Cone Corner", CommissionRate: types.MustMoney("6.5")}}
		for i, v := range vendors {
			s.SelectVendor(v)
			s.SetQuantityTaken(v.ID, cornetto, int64(10+i))
			s.SetQuantityTaken(v.ID, choco, int64(3*i))
		}
		require.NoError(t, s.Lock())
		require.NoError(t, s.SetQuantityReturned(vendors[1].ID, cornetto.ID, 4))

		want := ZeroSessionTotals()
		for _, v := range vendors {
			vt, ok := s.ComputeVendorTotals(v.ID)
			require.True(t, ok)
			want = want.Add(vt)
		}
		got := s.ComputeSessionTotals()
		assert.True(t, got.TotalRevenue.Equal(want.TotalRevenue))
		assert.True(t, got.TotalCost.Equal(want.TotalCost))
		assert.True(t, got.GrossProfit.Equal(want.GrossProfit))
		assert.True(t, got.TotalVendorCommission.Equal(want.TotalVendorCommission))
		assert.True(t, got.TotalNetProfit.Equal(want.TotalNetProfit))
		assert.True(t, got.TotalNetProfit.Equal(got.TotalRevenue.Sub(got.TotalCost).Sub(got.TotalVendorCommission)))
	})
}

func TestComputeTotals_NoFloatDrift(t *testing.T) {
	lines := make([]*LineItem, 0, 1000)
	for i := 0; i < 1000; i++ {
		l := newLine(ItemRef{ID: id.New(), UnitPrice: types.MustMoney("0.10"), UnitCost: types.MustMoney("0.07")})
		l.setTaken(1)
		lines = append(lines, l)
	}

	totals := ComputeTotals(lines, types.MustMoney("10"))
	assertMoney(t, "100", totals.Revenue, "revenue")
	assertMoney(t, "70", totals.Cost, "cost")
	assertMoney(t, "10", totals.Commission, "commission")
	assertMoney(t, "20", totals.NetProfit, "net")
}

func TestSession_Record(t *testing.T) {
	t.Run("requires a vendor", func(t *testing.T) {
		_, err := newTestSession().Record()
		requireValidation(t, err, "no vendor selected")
	})

	t.Run("requires lock", func(t *testing.T) {
		s := newTestSession()
		s.SelectVendor(sweetScoops)
		s.SetQuantityTaken(sweetScoops.ID, cornetto, 1)
		_, err := s.Record()
		requireValidation(t, err, "morning stock not locked")
	})

	t.Run("keeps only sold lines", func(t *testing.T) {
		s := newTestSession()
		s.SelectVendor(sweetScoops)
		s.SelectVendor(frozenDelights)
		s.SetQuantityTaken(sweetScoops.ID, cornetto, 20)
		s.SetQuantityTaken(sweetScoops.ID, choco, 2)
		s.SetQuantityTaken(frozenDelights.ID, choco, 10)
		require.NoError(t, s.Lock())
		require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 2))
		require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, choco.ID, 2))
		require.NoError(t, s.SetQuantityReturned(frozenDelights.ID, choco.ID, 10))

		rec, err := s.Record()
		require.NoError(t, err)

		assert.Equal(t, s.ID, rec.SubmissionID)
		assert.Equal(t, "2024-06-01", rec.Date)
		require.Len(t, rec.Vendors, 2)
		require.Len(t, rec.Vendors[0].Items, 1)
		assert.Equal(t, cornetto.ID, rec.Vendors[0].Items[0].ItemID)
		assert.Empty(t, rec.Vendors[1].Items)

		assertMoney(t, "63.00", rec.TotalRevenue, "revenue")
		assertMoney(t, "5.355", rec.TotalVendorCommission, "commission")
		assertMoney(t, "21.645", rec.TotalNetProfit, "net")
		assert.Equal(t, map[id.ID]int64{cornetto.ID: 18}, rec.SoldByItem())
	})
}

func TestSession_JSONKeepsPhase(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)
	s.SetQuantityTaken(sweetScoops.ID, cornetto, 20)
	require.NoError(t, s.Lock())
	require.NoError(t, s.SetQuantityReturned(sweetScoops.ID, cornetto.ID, 2))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, PhaseLocked, restored.Phase())
	assert.False(t, restored.SetQuantityTaken(sweetScoops.ID, cornetto, 1))
	totals, ok := restored.ComputeVendorTotals(sweetScoops.ID)
	require.True(t, ok)
	assertMoney(t, "21.645", totals.NetProfit, "net")

	assert.Error(t, json.Unmarshal([]byte(`{"phase":"closed"}`), &restored))
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := newTestSession()
	s.SelectVendor(sweetScoops)
	s.SetQuantityTaken(sweetScoops.ID, cornetto, 5)

	c := s.Clone()
	c.SetQuantityTaken(sweetScoops.ID, cornetto, 50)
	c.SelectVendor(frozenDelights)

	assert.Equal(t, int64(5), s.Vendor(sweetScoops.ID).Line(cornetto.ID).QuantityTaken)
	assert.Len(t, s.Vendors(), 1)
}

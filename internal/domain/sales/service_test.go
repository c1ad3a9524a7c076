package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/settlement"
	"vendorbook/pkg/numerator"
)

type memRepo struct {
	mu      sync.Mutex
	records []*settlement.DailySalesRecord
	// dupOnInsert simulates a concurrent writer that stored the record first.
	dupOnInsert *settlement.DailySalesRecord
	insertErr   error
}

func (m *memRepo) Insert(_ context.Context, rec *settlement.DailySalesRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.dupOnInsert != nil {
		m.records = append(m.records, m.dupOnInsert)
		return apperror.NewDuplicate("daily sales record", "submission_id", rec.SubmissionID.String())
	}
	for _, r := range m.records {
		if r.SubmissionID == rec.SubmissionID {
			return apperror.NewDuplicate("daily sales record", "submission_id", rec.SubmissionID.String())
		}
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, recordID id.ID) (*settlement.DailySalesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == recordID {
			return r, nil
		}
	}
	return nil, apperror.NewNotFound("daily sales record", recordID.String())
}

func (m *memRepo) GetBySubmission(_ context.Context, submissionID id.ID) (*settlement.DailySalesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.SubmissionID == submissionID {
			return r, nil
		}
	}
	return nil, apperror.NewNotFound("daily sales record", submissionID.String())
}

func (m *memRepo) inRange(r *settlement.DailySalesRecord, f ListFilter) bool {
	return (f.From == "" || r.Date >= f.From) && (f.To == "" || r.Date <= f.To)
}

func (m *memRepo) List(_ context.Context, f ListFilter) (domain.ListResult[*settlement.DailySalesRecord], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*settlement.DailySalesRecord
	for _, r := range m.records {
		if m.inRange(r, f) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	total := int64(len(out))
	if f.Offset >= len(out) {
		out = nil
	} else {
		out = out[f.Offset:]
	}
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return domain.ListResult[*settlement.DailySalesRecord]{Items: out, TotalCount: total}, nil
}

func (m *memRepo) ListVendorSales(_ context.Context, vendorID id.ID, f ListFilter) ([]VendorSale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []VendorSale
	for _, r := range m.records {
		if !m.inRange(r, f) {
			continue
		}
		for _, v := range r.Vendors {
			if v.VendorID == vendorID {
				out = append(out, VendorSale{
					RecordID: r.ID, Number: r.Number, Date: r.Date,
					VendorID: v.VendorID, VendorName: v.VendorName,
					CommissionRate: v.CommissionRate, Items: v.Items, Totals: v.Totals,
				})
			}
		}
	}
	return out, nil
}

func (m *memRepo) SumTotals(_ context.Context, f ListFilter) (settlement.SessionTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := settlement.ZeroSessionTotals()
	for _, r := range m.records {
		if m.inRange(r, f) {
			sum = sum.Merge(r.SessionTotals)
		}
	}
	return sum, nil
}

type fakeStock struct {
	decremented map[id.ID]int64
	err         error
	total, low  int64
}

func (f *fakeStock) DecrementSold(_ context.Context, sold map[id.ID]int64) error {
	if f.err != nil {
		return f.err
	}
	for k, v := range sold {
		f.decremented[k] += v
	}
	return nil
}

func (f *fakeStock) Counts(context.Context) (int64, int64, error) {
	return f.total, f.low, nil
}

type fakeVendorCount int64

func (f fakeVendorCount) CountActive(context.Context) (int64, error) { return int64(f), nil }

type seqNumbers struct {
	mu sync.Mutex
	n  map[string]int
}

func (s *seqNumbers) GetNextNumber(_ context.Context, scope string, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n[scope]++
	return fmt.Sprintf("%s-%d-%05d", cfg.Prefix, period.Year(), s.n[scope]), nil
}

func newTestService() (*Service, *memRepo, *fakeStock) {
	repo := &memRepo{}
	stock := &fakeStock{decremented: map[id.ID]int64{}, total: 4, low: 1}
	svc := NewService(repo, stock, fakeVendorCount(2), &seqNumbers{n: map[string]int{}}, nil)
	return svc, repo, stock
}

func newRecord(t *testing.T, businessID id.ID, date string, sold map[id.ID]int64) *settlement.DailySalesRecord {
	t.Helper()
	day, err := time.Parse(settlement.DateLayout, date)
	require.NoError(t, err)
	s := settlement.NewSession(businessID, "worker-1", day)
	vendorID := id.New()
	require.True(t, s.SelectVendor(settlement.VendorRef{ID: vendorID, Name: "Sweet Scoops", CommissionRate: types.MustMoney("8.5")}))
	for itemID, qty := range sold {
		ref := settlement.ItemRef{ID: itemID, Name: "Item", Category: "Cones", UnitPrice: types.MustMoney("3.50"), UnitCost: types.MustMoney("2.00")}
		require.True(t, s.SetQuantityTaken(vendorID, ref, qty+2))
	}
	require.NoError(t, s.Lock())
	for itemID := range sold {
		require.NoError(t, s.SetQuantityReturned(vendorID, itemID, 2))
	}
	rec, err := s.Record()
	require.NoError(t, err)
	return rec
}

func TestService_SaveRecord(t *testing.T) {
	ctx := context.Background()
	svc, repo, stock := newTestService()
	biz := id.New()
	itemID := id.New()

	rec := newRecord(t, biz, "2024-06-01", map[id.ID]int64{itemID: 10})
	saved, created, err := svc.SaveRecord(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "DS-2024-00001", saved.Number)
	assert.Equal(t, int64(10), stock.decremented[itemID])
	assert.Len(t, repo.records, 1)

	t.Run("resubmit returns stored record", func(t *testing.T) {
		again, created, err := svc.SaveRecord(ctx, rec)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, saved.ID, again.ID)
		assert.Equal(t, int64(10), stock.decremented[itemID], "stock must not be decremented twice")
		assert.Len(t, repo.records, 1)
	})

	t.Run("next record gets next number", func(t *testing.T) {
		next, _, err := svc.SaveRecord(ctx, newRecord(t, biz, "2024-06-02", map[id.ID]int64{itemID: 1}))
		require.NoError(t, err)
		assert.Equal(t, "DS-2024-00002", next.Number)
	})

	t.Run("numbers are scoped per business", func(t *testing.T) {
		other, _, err := svc.SaveRecord(ctx, newRecord(t, id.New(), "2024-06-02", map[id.ID]int64{itemID: 1}))
		require.NoError(t, err)
		assert.Equal(t, "DS-2024-00001", other.Number)
	})
}

func TestService_SaveRecord_LostRace(t *testing.T) {
	svc, repo, _ := newTestService()
	rec := newRecord(t, id.New(), "2024-06-01", map[id.ID]int64{id.New(): 3})

	winner := *rec
	winner.ID = id.New()
	winner.Number = "DS-2024-00099"
	repo.dupOnInsert = &winner

	got, created, err := svc.SaveRecord(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, got.ID)
}

func TestService_SaveRecord_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("insert error propagates", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.insertErr = errors.New("connection reset")
		_, _, err := svc.SaveRecord(ctx, newRecord(t, id.New(), "2024-06-01", map[id.ID]int64{id.New(): 1}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("stock error propagates", func(t *testing.T) {
		svc, _, stock := newTestService()
		stock.err = errors.New("deadlock detected")
		_, _, err := svc.SaveRecord(ctx, newRecord(t, id.New(), "2024-06-01", map[id.ID]int64{id.New(): 1}))
		require.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		svc, _, _ := newTestService()
		rec := newRecord(t, id.New(), "2024-06-01", map[id.ID]int64{id.New(): 1})
		rec.Date = "01/06/2024"
		_, _, err := svc.SaveRecord(ctx, rec)
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestService_DailyReport(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	biz := id.New()
	itemID := id.New()

	for _, d := range []string{"2024-06-01", "2024-06-01", "2024-06-02"} {
		_, _, err := svc.SaveRecord(ctx, newRecord(t, biz, d, map[id.ID]int64{itemID: 10}))
		require.NoError(t, err)
	}

	report, err := svc.DailyReport(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, report.Records, 2)
	// 10 sold at 3.50 per record.
	assert.Equal(t, "70", report.TotalRevenue.String())
	assert.Equal(t, "30", report.GrossProfit.String())
	assert.Equal(t, "5.95", report.TotalVendorCommission.String())
	assert.Equal(t, "24.05", report.TotalNetProfit.String())

	empty, err := svc.DailyReport(ctx, "2024-07-01")
	require.NoError(t, err)
	assert.NotNil(t, empty.Records)
	assert.True(t, empty.TotalRevenue.IsZero())

	_, err = svc.DailyReport(ctx, "June 1")
	assert.True(t, apperror.IsValidation(err))
}

func TestService_DashboardStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	_, _, err := svc.SaveRecord(ctx, newRecord(t, id.New(), "2024-06-01", map[id.ID]int64{id.New(): 10}))
	require.NoError(t, err)

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "35", stats.TotalRevenue.String())
	assert.Equal(t, "12.025", stats.TotalNetProfit.String())
	assert.Equal(t, int64(2), stats.ActiveVendors)
	assert.Equal(t, int64(4), stats.Products)
	assert.Equal(t, int64(1), stats.LowStockItems)
}

func TestListFilter_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		filter  ListFilter
		wantErr bool
		limit   int
	}{
		{name: "defaults", filter: ListFilter{}, limit: 50},
		{name: "capped", filter: ListFilter{Limit: 10000}, limit: 500},
		{name: "range", filter: ListFilter{From: "2024-01-01", To: "2024-01-31", Limit: 5}, limit: 5},
		{name: "inverted range", filter: ListFilter{From: "2024-02-01", To: "2024-01-31"}, wantErr: true},
		{name: "bad from", filter: ListFilter{From: "2024-13-01"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			err := f.Normalize()
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.limit, f.Limit)
		})
	}
}

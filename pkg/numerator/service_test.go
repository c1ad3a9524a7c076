package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier keeps one counter per (scope, key) and adds the increment passed as $3.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	calls    int
	err      error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: map[string]int64{}}
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	k := args[0].(string) + "|" + args[1].(string)
	m.counters[k] += args[2].(int64)
	return &mockRow{val: m.counters[k]}
}

var period = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("DS")

	num, err := svc.GetNextNumber(ctx, "biz-a", cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DS-2024-00001", num)

	num, err = svc.GetNextNumber(ctx, "biz-a", cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DS-2024-00002", num)

	// scopes have separate counters
	num, err = svc.GetNextNumber(ctx, "biz-b", cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DS-2024-00001", num)
	assert.Equal(t, 3, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("DS")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	for want := 1; want <= 10; want++ {
		num, err := svc.GetNextNumber(ctx, "biz", cfg, opts, period)
		require.NoError(t, err)
		assert.Equal(t, formatNumber(cfg, period, int64(want)), num)
	}
	assert.Equal(t, 1, q.calls)

	num, err := svc.GetNextNumber(ctx, "biz", cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "DS-2024-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")

	_, err := New(q).GetNextNumber(context.Background(), "biz", DefaultConfig("DS"), nil, period)
	assert.ErrorContains(t, err, "connection refused")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "DS-2024-00042", formatNumber(DefaultConfig("DS"), period, 42))
	assert.Equal(t, "DS-042", formatNumber(Config{Prefix: "DS", PadWidth: 3}, period, 42))
	assert.Equal(t, "DS_2024_06", buildKey(Config{Prefix: "DS", ResetPeriod: "month"}, period))
	assert.Equal(t, "DS", buildKey(Config{Prefix: "DS", ResetPeriod: "never"}, period))
}

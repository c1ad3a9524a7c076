// Package numerator issues human-readable sequential numbers such as DS-2024-00001.
// Counters live in the sys_sequences table, one row per (scope, key).
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict hits the database for every number. No gaps while the
	// surrounding transaction commits.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges in memory. Gaps appear after a restart.
	StrategyCached
)

const defaultRangeSize int64 = 50

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is how many numbers the cached strategy reserves at once.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Querier is the slice of pgx the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call, typically the transaction in ctx.
type QuerierFunc func(ctx context.Context) Querier

type cachedRange struct {
	current int64
	max     int64
}

// Service provides numbering.
type Service struct {
	querier QuerierFunc

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a numerator bound to a fixed querier.
func New(q Querier) *Service {
	return NewWithQuerier(func(context.Context) Querier { return q })
}

// NewWithQuerier creates a numerator that resolves its querier per call.
func NewWithQuerier(fn QuerierFunc) *Service {
	return &Service{
		querier: fn,
		ranges:  make(map[string]*cachedRange),
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "DS")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// GetNextNumber generates the next number for scope (usually a business id).
// Pattern: PREFIX-YEAR-XXXXX.
func (s *Service) GetNextNumber(ctx context.Context, scope string, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	key := buildKey(cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, scope, key, opts.RangeSize)
	default:
		num, err = s.reserve(ctx, scope, key, 1)
	}
	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

// reserve bumps the counter by n and returns the new value, i.e. the last
// number of the reserved block.
func (s *Service) reserve(ctx context.Context, scope, key string, n int64) (int64, error) {
	var last int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (scope, key, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (scope, key) DO UPDATE SET current_val = sys_sequences.current_val + $3
		RETURNING current_val
	`, scope, key, n).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("reserve %s/%s: %w", scope, key, err)
	}
	return last, nil
}

func (s *Service) nextCached(ctx context.Context, scope, key string, size int64) (int64, error) {
	if size <= 0 {
		size = defaultRangeSize
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	cacheKey := scope + ":" + key
	rng, ok := s.ranges[cacheKey]
	if !ok {
		rng = &cachedRange{}
		s.ranges[cacheKey] = rng
	}

	if rng.current >= rng.max {
		last, err := s.reserve(ctx, scope, key, size)
		if err != nil {
			return 0, err
		}
		rng.current = last - size
		rng.max = last
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber overwrites the counter so the next issued number is value+1.
func (s *Service) SetNextNumber(ctx context.Context, scope string, cfg Config, period time.Time, value int64) error {
	key := buildKey(cfg, period)

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (scope, key, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (scope, key) DO UPDATE SET current_val = $3
		RETURNING current_val
	`, scope, key, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, scope+":"+key)
	s.cacheMu.Unlock()

	return err
}

func buildKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

func formatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

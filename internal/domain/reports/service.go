package reports

import (
	"context"
	"fmt"
	"time"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/tx"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/settlement"
	"vendorbook/pkg/logger"
)

// RecordSource lists submitted records in an inclusive date range.
type RecordSource interface {
	ListAll(ctx context.Context, from, to string) ([]*settlement.DailySalesRecord, error)
}

// Service provides report generation operations.
type Service struct {
	repo      Repository
	records   RecordSource
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository, records RecordSource, txm tx.Manager) *Service {
	if txm == nil {
		txm = tx.Nop{}
	}
	return &Service{
		repo:      repo,
		records:   records,
		txManager: txm,
		now:       time.Now,
	}
}

// GenerateMonthly aggregates a month's records and stores the result,
// replacing an earlier report for that month. An empty month means the
// current one.
func (s *Service) GenerateMonthly(ctx context.Context, month string) (*MonthlyReport, error) {
	businessID, err := domain.BusinessFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if month == "" {
		month = s.now().UTC().Format(MonthLayout)
	}
	from, to, err := MonthRange(month)
	if err != nil {
		return nil, apperror.NewValidation("invalid month").
			WithDetail("field", "month").
			WithDetail("value", month)
	}

	records, err := s.records.ListAll(ctx, from.Format(settlement.DateLayout), to.Format(settlement.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	report := Build(month, records)
	report.ID = id.New()
	report.BusinessID = businessID

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Upsert(ctx, report)
	})
	if err != nil {
		return nil, fmt.Errorf("store monthly report: %w", err)
	}

	logger.Info(ctx, "monthly report generated",
		"month", month,
		"records", len(records),
		"transactions", report.TotalTransactions)
	return report, nil
}

// GetMonthly returns a stored report.
func (s *Service) GetMonthly(ctx context.Context, month string) (*MonthlyReport, error) {
	if _, _, err := MonthRange(month); err != nil {
		return nil, apperror.NewValidation("invalid month").WithDetail("value", month)
	}
	return s.repo.GetByMonth(ctx, month)
}

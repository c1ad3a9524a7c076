package sales

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
	"vendorbook/pkg/numerator"
)

// RecordPrefix prefixes daily sales record numbers.
const RecordPrefix = "DS"

// StockKeeper is the part of the item catalog sales needs.
type StockKeeper interface {
	DecrementSold(ctx context.Context, sold map[id.ID]int64) error
	Counts(ctx context.Context) (total, lowStock int64, err error)
}

// VendorCounter counts active vendors.
type VendorCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// Numberer issues record numbers.
type Numberer interface {
	GetNextNumber(ctx context.Context, scope string, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error)
}

// Service implements settlement.RecordSink and the sales queries.
type Service struct {
	repo      Repository
	stock     StockKeeper
	vendors   VendorCounter
	numbers   Numberer
	txManager tx.Manager
}

var _ settlement.RecordSink = (*Service)(nil)

// NewService creates a sales service.
func NewService(repo Repository, stock StockKeeper, vendors VendorCounter, numbers Numberer, txm tx.Manager) *Service {
	if txm == nil {
		txm = tx.Nop{}
	}
	return &Service{
		repo:      repo,
		stock:     stock,
		vendors:   vendors,
		numbers:   numbers,
		txManager: txm,
	}
}

// SaveRecord numbers and stores a submitted record and takes sold units out of
// stock, all in one transaction. A record already stored for the same
// submission is returned with created=false.
func (s *Service) SaveRecord(ctx context.Context, rec *settlement.DailySalesRecord) (*settlement.DailySalesRecord, bool, error) {
	if prev, err := s.repo.GetBySubmission(ctx, rec.SubmissionID); err == nil {
		return prev, false, nil
	} else if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	period, err := time.Parse(settlement.DateLayout, rec.Date)
	if err != nil {
		return nil, false, apperror.NewValidation("invalid date").WithDetail("value", rec.Date)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.GetNextNumber(ctx, rec.BusinessID.String(), numerator.DefaultConfig(RecordPrefix), nil, period)
		if err != nil {
			return fmt.Errorf("number record: %w", err)
		}
		rec.Number = number

		if err := s.repo.Insert(ctx, rec); err != nil {
			return err
		}
		return s.stock.DecrementSold(ctx, rec.SoldByItem())
	})
	if err != nil {
		// Lost a race with a concurrent submit of the same session.
		if apperror.IsDuplicate(err) {
			if prev, findErr := s.repo.GetBySubmission(ctx, rec.SubmissionID); findErr == nil {
				return prev, false, nil
			}
		}
		return nil, false, err
	}

	logger.Info(ctx, "daily sales record stored", "record_id", rec.ID, "number", rec.Number, "date", rec.Date)
	return rec, true, nil
}

// FindBySubmission implements settlement.RecordSink.
func (s *Service) FindBySubmission(ctx context.Context, submissionID id.ID) (*settlement.DailySalesRecord, error) {
	return s.repo.GetBySubmission(ctx, submissionID)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, recordID id.ID) (*settlement.DailySalesRecord, error) {
	return s.repo.GetByID(ctx, recordID)
}

// List returns records in a date range, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*settlement.DailySalesRecord], error) {
	if err := filter.Normalize(); err != nil {
		return domain.ListResult[*settlement.DailySalesRecord]{}, err
	}
	return s.repo.List(ctx, filter)
}

// ListAll pages through every record in a date range.
func (s *Service) ListAll(ctx context.Context, from, to string) ([]*settlement.DailySalesRecord, error) {
	filter := ListFilter{From: from, To: to, Limit: 500}
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	var all []*settlement.DailySalesRecord
	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) < filter.Limit {
			return all, nil
		}
		filter.Offset += filter.Limit
	}
}

// DailyReport returns every record for one date with their summed totals.
func (s *Service) DailyReport(ctx context.Context, date string) (*DailyReport, error) {
	records, err := s.ListAll(ctx, date, date)
	if err != nil {
		return nil, err
	}

	report := &DailyReport{
		Date:          date,
		Records:       records,
		SessionTotals: settlement.ZeroSessionTotals(),
	}
	if report.Records == nil {
		report.Records = []*settlement.DailySalesRecord{}
	}
	for _, r := range records {
		report.SessionTotals = report.SessionTotals.Merge(r.SessionTotals)
	}
	return report, nil
}

// VendorSales returns one vendor's sales history.
func (s *Service) VendorSales(ctx context.Context, vendorID id.ID, filter ListFilter) ([]VendorSale, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.ListVendorSales(ctx, vendorID, filter)
}

// DashboardStats gathers the headline figures.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	totals, err := s.repo.SumTotals(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("sum totals: %w", err)
	}
	active, err := s.vendors.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vendors: %w", err)
	}
	products, low, err := s.stock.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	return &DashboardStats{
		TotalRevenue:   totals.TotalRevenue,
		TotalNetProfit: totals.TotalNetProfit,
		ActiveVendors:  active,
		Products:       products,
		LowStockItems:  low,
	}, nil
}

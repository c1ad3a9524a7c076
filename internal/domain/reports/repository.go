package reports

import (
	"context"
)

// Repository stores generated monthly reports, one per business and month.
type Repository interface {
	// Upsert replaces any report already stored for the same month.
	Upsert(ctx context.Context, report *MonthlyReport) error
	GetByMonth(ctx context.Context, month string) (*MonthlyReport, error)
}

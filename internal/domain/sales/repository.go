package sales

import (
	"context"

	"vendorbook/internal/core/id"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/settlement"
)

// Repository persists daily sales records for the business carried by ctx.
type Repository interface {
	// Insert stores a record with its vendor and item rows. A second record with
	// the same submission id fails with a duplicate error.
	Insert(ctx context.Context, rec *settlement.DailySalesRecord) error

	GetByID(ctx context.Context, recordID id.ID) (*settlement.DailySalesRecord, error)
	GetBySubmission(ctx context.Context, submissionID id.ID) (*settlement.DailySalesRecord, error)

	// List returns records newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*settlement.DailySalesRecord], error)

	ListVendorSales(ctx context.Context, vendorID id.ID, filter ListFilter) ([]VendorSale, error)

	// SumTotals adds up session totals over the filter's date range.
	SumTotals(ctx context.Context, filter ListFilter) (settlement.SessionTotals, error)
}

// Package report_repo provides PostgreSQL storage for generated monthly reports.
package report_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/reports"
	"vendorbook/internal/infrastructure/storage/postgres"
)

const reportTable = "monthly_reports"

var reportCols = []string{
	"id", "business_id", "report_month",
	"total_sales", "total_profit", "total_vendor_commission", "net_profit", "total_transactions",
	"category_breakdown", "vendor_breakdown", "generated_at",
}

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type reportRow struct {
	ID                    id.ID       `db:"id"`
	BusinessID            id.ID       `db:"business_id"`
	ReportMonth           string      `db:"report_month"`
	TotalSales            types.Money `db:"total_sales"`
	TotalProfit           types.Money `db:"total_profit"`
	TotalVendorCommission types.Money `db:"total_vendor_commission"`
	NetProfit             types.Money `db:"net_profit"`
	TotalTransactions     int64       `db:"total_transactions"`
	CategoryBreakdown     []byte      `db:"category_breakdown"`
	VendorBreakdown       []byte      `db:"vendor_breakdown"`
	GeneratedAt           time.Time   `db:"generated_at"`
}

func toRow(r *reports.MonthlyReport) (reportRow, error) {
	categories := r.Categories
	if categories == nil {
		categories = []reports.CategoryBreakdown{}
	}
	vendors := r.Vendors
	if vendors == nil {
		vendors = []reports.VendorBreakdown{}
	}

	cats, err := json.Marshal(categories)
	if err != nil {
		return reportRow{}, fmt.Errorf("marshal category breakdown: %w", err)
	}
	vens, err := json.Marshal(vendors)
	if err != nil {
		return reportRow{}, fmt.Errorf("marshal vendor breakdown: %w", err)
	}

	return reportRow{
		ID:                    r.ID,
		BusinessID:            r.BusinessID,
		ReportMonth:           r.Month,
		TotalSales:            r.TotalSales,
		TotalProfit:           r.TotalProfit,
		TotalVendorCommission: r.TotalVendorCommission,
		NetProfit:             r.NetProfit,
		TotalTransactions:     r.TotalTransactions,
		CategoryBreakdown:     cats,
		VendorBreakdown:       vens,
		GeneratedAt:           r.GeneratedAt,
	}, nil
}

func (row reportRow) toReport() (*reports.MonthlyReport, error) {
	r := &reports.MonthlyReport{
		ID:                    row.ID,
		BusinessID:            row.BusinessID,
		Month:                 row.ReportMonth,
		TotalSales:            row.TotalSales,
		TotalProfit:           row.TotalProfit,
		TotalVendorCommission: row.TotalVendorCommission,
		NetProfit:             row.NetProfit,
		TotalTransactions:     row.TotalTransactions,
		Categories:            []reports.CategoryBreakdown{},
		Vendors:               []reports.VendorBreakdown{},
		GeneratedAt:           row.GeneratedAt,
	}
	if len(row.CategoryBreakdown) > 0 {
		if err := json.Unmarshal(row.CategoryBreakdown, &r.Categories); err != nil {
			return nil, fmt.Errorf("unmarshal category breakdown: %w", err)
		}
	}
	if len(row.VendorBreakdown) > 0 {
		if err := json.Unmarshal(row.VendorBreakdown, &r.Vendors); err != nil {
			return nil, fmt.Errorf("unmarshal vendor breakdown: %w", err)
		}
	}
	return r, nil
}

func (r *ReportRepo) upsertQuery(row reportRow) (string, []any, error) {
	return r.builder.Insert(reportTable).
		Columns(reportCols...).
		Values(
			row.ID, row.BusinessID, row.ReportMonth,
			row.TotalSales, row.TotalProfit, row.TotalVendorCommission, row.NetProfit, row.TotalTransactions,
			row.CategoryBreakdown, row.VendorBreakdown, row.GeneratedAt,
		).
		Suffix(`ON CONFLICT (business_id, report_month) DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			total_profit = EXCLUDED.total_profit,
			total_vendor_commission = EXCLUDED.total_vendor_commission,
			net_profit = EXCLUDED.net_profit,
			total_transactions = EXCLUDED.total_transactions,
			category_breakdown = EXCLUDED.category_breakdown,
			vendor_breakdown = EXCLUDED.vendor_breakdown,
			generated_at = EXCLUDED.generated_at
		RETURNING id`).
		ToSql()
}

// Upsert stores the report, replacing an earlier one for the same month.
// The stored row keeps its original id, which is written back to report.
func (r *ReportRepo) Upsert(ctx context.Context, report *reports.MonthlyReport) error {
	businessID, err := domain.BusinessFromContext(ctx)
	if err != nil {
		return err
	}
	report.BusinessID = businessID
	if id.IsNil(report.ID) {
		report.ID = id.New()
	}

	row, err := toRow(report)
	if err != nil {
		return err
	}
	sql, args, err := r.upsertQuery(row)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	var storedID id.ID
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&storedID); err != nil {
		return fmt.Errorf("upsert monthly report: %w", postgres.MapError(err, "monthly report"))
	}
	report.ID = storedID
	return nil
}

// GetByMonth returns the stored report for a YYYY-MM month.
func (r *ReportRepo) GetByMonth(ctx context.Context, month string) (*reports.MonthlyReport, error) {
	businessID, err := domain.BusinessFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.builder.Select(reportCols...).
		From(reportTable).
		Where(squirrel.Eq{"business_id": businessID, "report_month": month}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row reportRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("monthly report", month)
		}
		return nil, fmt.Errorf("get monthly report: %w", err)
	}
	return row.toReport()
}

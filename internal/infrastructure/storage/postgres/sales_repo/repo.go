// Package sales_repo stores daily sales records across a header table, a
// per-vendor table and a per-line table.
package sales_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/sales"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/infrastructure/storage/postgres"
)

const (
	recordTable = "daily_sales_records"
	vendorTable = "daily_sales_vendors"
	lineTable   = "daily_sales_lines"
)

// Repo implements sales.Repository.
type Repo struct {
	txm     *postgres.TxManager
	batcher *postgres.Batcher
	builder squirrel.StatementBuilderType
}

var _ sales.Repository = (*Repo)(nil)

// NewRepo creates a sales repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		batcher: postgres.NewBatcher(txm),
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) scope(ctx context.Context, table string) (squirrel.Eq, error) {
	businessID, err := domain.BusinessFromContext(ctx)
	if err != nil {
		return nil, err
	}
	col := "business_id"
	if table != "" {
		col = table + ".business_id"
	}
	return squirrel.Eq{col: businessID}, nil
}

// Insert implements sales.Repository. Must run inside a transaction.
func (r *Repo) Insert(ctx context.Context, rec *settlement.DailySalesRecord) error {
	header, vendors, lines, err := flatten(rec)
	if err != nil {
		return apperror.NewValidation("invalid date").WithDetail("value", rec.Date)
	}

	queries := make([]postgres.BatchQuery, 0, 3)
	q, err := r.insertQuery(recordTable, recordCols, [][]any{header.values()})
	if err != nil {
		return err
	}
	queries = append(queries, q)

	if len(vendors) > 0 {
		rows := make([][]any, len(vendors))
		for i, v := range vendors {
			rows[i] = v.values()
		}
		q, err := r.insertQuery(vendorTable, vendorCols, rows)
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}
	if len(lines) > 0 {
		rows := make([][]any, len(lines))
		for i, l := range lines {
			rows[i] = l.values()
		}
		q, err := r.insertQuery(lineTable, lineCols, rows)
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}

	if err := r.batcher.Exec(ctx, queries); err != nil {
		return fmt.Errorf("insert daily sales record: %w", postgres.MapError(err, "daily sales record"))
	}
	return nil
}

func (r *Repo) insertQuery(table string, cols []string, rows [][]any) (postgres.BatchQuery, error) {
	ins := r.builder.Insert(table).Columns(cols...)
	for _, row := range rows {
		ins = ins.Values(row...)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return postgres.BatchQuery{}, fmt.Errorf("build insert %s: %w", table, err)
	}
	return postgres.BatchQuery{SQL: sql, Args: args}, nil
}

// GetByID implements sales.Repository.
func (r *Repo) GetByID(ctx context.Context, recordID id.ID) (*settlement.DailySalesRecord, error) {
	return r.getOne(ctx, squirrel.Eq{"id": recordID}, recordID)
}

// GetBySubmission implements sales.Repository.
func (r *Repo) GetBySubmission(ctx context.Context, submissionID id.ID) (*settlement.DailySalesRecord, error) {
	return r.getOne(ctx, squirrel.Eq{"submission_id": submissionID}, submissionID)
}

func (r *Repo) getOne(ctx context.Context, where squirrel.Eq, key id.ID) (*settlement.DailySalesRecord, error) {
	scope, err := r.scope(ctx, "")
	if err != nil {
		return nil, err
	}
	q := r.builder.Select(recordCols...).From(recordTable).Where(scope).Where(where).Limit(1)

	recs, err := r.load(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, apperror.NewNotFound("daily sales record", key.String())
	}
	return recs[0], nil
}

// headerQuery selects record headers within the filter's date range.
func (r *Repo) headerQuery(ctx context.Context, f sales.ListFilter) (squirrel.SelectBuilder, error) {
	scope, err := r.scope(ctx, "")
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	q := r.builder.Select(recordCols...).From(recordTable).Where(scope)
	if f.From != "" {
		q = q.Where(squirrel.GtOrEq{"sale_date": f.From})
	}
	if f.To != "" {
		q = q.Where(squirrel.LtOrEq{"sale_date": f.To})
	}
	if f.VendorID != nil {
		sub := r.builder.Select("1").From(vendorTable).
			Where("daily_sales_vendors.record_id = daily_sales_records.id").
			Where(squirrel.Eq{"vendor_id": *f.VendorID})
		q = q.Where(squirrel.Expr("EXISTS (?)", sub))
	}
	return q, nil
}

// List implements sales.Repository.
func (r *Repo) List(ctx context.Context, f sales.ListFilter) (domain.ListResult[*settlement.DailySalesRecord], error) {
	result := domain.ListResult[*settlement.DailySalesRecord]{
		Items:  []*settlement.DailySalesRecord{},
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q, err := r.headerQuery(ctx, f)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count records: %w", err)
	}

	q = q.OrderBy("sale_date DESC", "created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	items, err := r.load(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// load runs a header query and attaches vendor and line rows.
func (r *Repo) load(ctx context.Context, q squirrel.SelectBuilder) ([]*settlement.DailySalesRecord, error) {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var headers []recordRow
	if err := pgxscan.Select(ctx, querier, &headers, sql, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	if len(headers) == 0 {
		return nil, nil
	}

	ids := make([]id.ID, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}

	sql, args, err = r.builder.Select(vendorCols...).From(vendorTable).
		Where(squirrel.Eq{"record_id": ids}).
		OrderBy("record_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build vendor query: %w", err)
	}
	var vendors []vendorRow
	if err := pgxscan.Select(ctx, querier, &vendors, sql, args...); err != nil {
		return nil, fmt.Errorf("select record vendors: %w", err)
	}

	sql, args, err = r.builder.Select(lineCols...).From(lineTable).
		Where(squirrel.Eq{"record_id": ids}).
		OrderBy("vendor_row_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line query: %w", err)
	}
	var lines []lineRow
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select record lines: %w", err)
	}

	return assemble(headers, vendors, lines), nil
}

// ListVendorSales implements sales.Repository.
func (r *Repo) ListVendorSales(ctx context.Context, vendorID id.ID, f sales.ListFilter) ([]sales.VendorSale, error) {
	q, err := r.vendorSalesQuery(ctx, vendorID, f)
	if err != nil {
		return nil, err
	}
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []vendorSaleRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select vendor sales: %w", err)
	}
	if len(rows) == 0 {
		return []sales.VendorSale{}, nil
	}

	rowIDs := make([]id.ID, len(rows))
	for i, row := range rows {
		rowIDs[i] = row.ID
	}
	sql, args, err = r.builder.Select(lineCols...).From(lineTable).
		Where(squirrel.Eq{"vendor_row_id": rowIDs}).
		OrderBy("vendor_row_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line query: %w", err)
	}
	var lines []lineRow
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select vendor lines: %w", err)
	}

	byRow := make(map[id.ID][]settlement.LineItem, len(rows))
	for _, l := range lines {
		byRow[l.VendorRowID] = append(byRow[l.VendorRowID], l.lineItem())
	}

	out := make([]sales.VendorSale, 0, len(rows))
	for _, row := range rows {
		items := byRow[row.ID]
		if items == nil {
			items = []settlement.LineItem{}
		}
		out = append(out, sales.VendorSale{
			RecordID:       row.RecordID,
			Number:         row.Number,
			Date:           row.SaleDate.Format(settlement.DateLayout),
			VendorID:       row.VendorID,
			VendorName:     row.VendorName,
			CommissionRate: row.CommissionRate,
			Items:          items,
			Totals:         row.totals(),
		})
	}
	return out, nil
}

func (r *Repo) vendorSalesQuery(ctx context.Context, vendorID id.ID, f sales.ListFilter) (squirrel.SelectBuilder, error) {
	scope, err := r.scope(ctx, "v")
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}

	cols := make([]string, 0, len(vendorCols)+2)
	for _, c := range vendorCols {
		cols = append(cols, "v."+c)
	}
	cols = append(cols, "r.number", "r.sale_date")

	q := r.builder.Select(cols...).
		From(vendorTable + " v").
		Join(recordTable + " r ON r.id = v.record_id").
		Where(scope).
		Where(squirrel.Eq{"v.vendor_id": vendorID})
	if f.From != "" {
		q = q.Where(squirrel.GtOrEq{"r.sale_date": f.From})
	}
	if f.To != "" {
		q = q.Where(squirrel.LtOrEq{"r.sale_date": f.To})
	}
	q = q.OrderBy("r.sale_date DESC", "r.created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q, nil
}

// SumTotals implements sales.Repository.
func (r *Repo) SumTotals(ctx context.Context, f sales.ListFilter) (settlement.SessionTotals, error) {
	totals := settlement.ZeroSessionTotals()

	q, err := r.sumQuery(ctx, f)
	if err != nil {
		return totals, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return totals, fmt.Errorf("build sum query: %w", err)
	}

	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(
		&totals.TotalRevenue,
		&totals.TotalCost,
		&totals.GrossProfit,
		&totals.TotalVendorCommission,
		&totals.TotalNetProfit,
	)
	if err != nil {
		return totals, fmt.Errorf("sum totals: %w", err)
	}
	return totals, nil
}

func (r *Repo) sumQuery(ctx context.Context, f sales.ListFilter) (squirrel.SelectBuilder, error) {
	scope, err := r.scope(ctx, "")
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	q := r.builder.Select(
		"COALESCE(SUM(total_revenue), 0)",
		"COALESCE(SUM(total_cost), 0)",
		"COALESCE(SUM(gross_profit), 0)",
		"COALESCE(SUM(total_vendor_commission), 0)",
		"COALESCE(SUM(total_net_profit), 0)",
	).From(recordTable).Where(scope)
	if f.From != "" {
		q = q.Where(squirrel.GtOrEq{"sale_date": f.From})
	}
	if f.To != "" {
		q = q.Where(squirrel.LtOrEq{"sale_date": f.To})
	}
	return q, nil
}

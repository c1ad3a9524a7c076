package catalog_repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/domain/catalogs/item"
	"vendorbook/internal/infrastructure/storage/postgres"
)

const itemTable = "items"

// decrementStockSQL subtracts sold quantities in one statement, flooring at zero.
const decrementStockSQL = `
UPDATE items AS i
SET stock = GREATEST(i.stock - s.qty, 0),
    version = i.version + 1,
    updated_at = now()
FROM (SELECT unnest($1::uuid[]) AS id, unnest($2::bigint[]) AS qty) AS s
WHERE i.id = s.id AND i.business_id = $3`

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

var _ item.Repository = (*ItemRepo)(nil)

// NewItemRepo creates a new item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			txm,
			itemTable,
			"item",
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// ListLowStock implements item.Repository.
func (r *ItemRepo) ListLowStock(ctx context.Context) ([]*item.Item, error) {
	scope, err := r.Scope(ctx)
	if err != nil {
		return nil, err
	}
	q := r.baseSelect().
		Where(scope).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where("stock <= low_stock_threshold").
		OrderBy("stock ASC", "name ASC")
	return r.Select(ctx, q)
}

// SetStock implements item.Repository.
func (r *ItemRepo) SetStock(ctx context.Context, itemID id.ID, stock int64) error {
	scope, err := r.Scope(ctx)
	if err != nil {
		return err
	}
	sql, args, err := r.Builder().
		Update(itemTable).
		Set("stock", stock).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(scope).
		Where(squirrel.Eq{"id": itemID, "deletion_mark": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set stock: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set stock: %w", postgres.MapError(err, "item"))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}

// DecrementStock implements item.Repository. Items missing from the catalog
// are skipped.
func (r *ItemRepo) DecrementStock(ctx context.Context, sold map[id.ID]int64) error {
	scope, err := r.Scope(ctx)
	if err != nil {
		return err
	}
	ids, qtys := soldArrays(sold)
	if len(ids) == 0 {
		return nil
	}

	if _, err := r.Querier(ctx).Exec(ctx, decrementStockSQL, ids, qtys, scope["business_id"]); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

// Count implements item.Repository.
func (r *ItemRepo) Count(ctx context.Context) (total, lowStock int64, err error) {
	scope, err := r.Scope(ctx)
	if err != nil {
		return 0, 0, err
	}
	sql, args, err := r.Builder().
		Select("COUNT(*)", "COUNT(*) FILTER (WHERE stock <= low_stock_threshold)").
		From(itemTable).
		Where(scope).
		Where(squirrel.Eq{"deletion_mark": false}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build count: %w", err)
	}

	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&total, &lowStock); err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}
	return total, lowStock, nil
}

// soldArrays flattens positive quantities into parallel arrays ordered by id,
// so concurrent submissions lock rows in the same order.
func soldArrays(sold map[id.ID]int64) ([]id.ID, []int64) {
	ids := make([]id.ID, 0, len(sold))
	for itemID, qty := range sold {
		if qty > 0 {
			ids = append(ids, itemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	qtys := make([]int64, len(ids))
	for i, itemID := range ids {
		qtys[i] = sold[itemID]
	}
	return ids, qtys
}

package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/infrastructure/storage/postgres"
)

const vendorTable = "vendors"

// VendorRepo implements vendor.Repository.
type VendorRepo struct {
	*BaseCatalogRepo[*vendor.Vendor]
}

var _ vendor.Repository = (*VendorRepo)(nil)

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txm *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*vendor.Vendor](
			txm,
			vendorTable,
			"vendor",
			postgres.ExtractDBColumns[vendor.Vendor](),
			func() *vendor.Vendor { return &vendor.Vendor{} },
		),
	}
}

// CountActive implements vendor.Repository.
func (r *VendorRepo) CountActive(ctx context.Context) (int64, error) {
	scope, err := r.Scope(ctx)
	if err != nil {
		return 0, err
	}
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(vendorTable).
		Where(scope).
		Where(squirrel.Eq{"deletion_mark": false, "status": vendor.StatusActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vendors: %w", err)
	}
	return n, nil
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"vendorbook/internal/core/apperror"
)

// SQLSTATE codes mapped to application errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// MapError turns constraint violations into application errors. Other errors
// are returned unchanged.
func MapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
	case foreignKeyViolation:
		return apperror.NewConflict("referenced record is missing or still in use").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case checkViolation:
		return apperror.NewValidation("value violates constraint").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}

package settlement

import (
	"vendorbook/internal/core/apperror"
)

// ErrNoVendorSelected is returned when submitting with an empty vendor selection.
func ErrNoVendorSelected() *apperror.AppError {
	return apperror.NewValidation("no vendor selected")
}

// ErrNotLocked is returned when submitting, or entering returns, before the morning lock.
func ErrNotLocked() *apperror.AppError {
	return apperror.NewValidation("morning stock not locked")
}

// ErrNoItemsTaken is returned when locking with every taken quantity at zero.
func ErrNoItemsTaken() *apperror.AppError {
	return apperror.NewValidation("no items taken")
}

// ErrLocked is returned by the service when a morning edit reaches a locked session.
func ErrLocked() *apperror.AppError {
	return apperror.NewBusinessRule(apperror.CodeSessionLocked, "morning stock already locked")
}

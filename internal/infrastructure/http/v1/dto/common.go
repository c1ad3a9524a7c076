// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"vendorbook/internal/core/entity"
	"vendorbook/internal/core/types"
)

// --- Numbers ---

// Amount renders money as a JSON number rounded to two places.
// Rounding happens only here; stored and computed values keep full precision.
type Amount decimal.Decimal

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(types.DisplayPlaces)), nil
}

// Money converts a domain value for display.
func Money(m types.Money) Amount {
	return Amount(m)
}

// Rate renders a percent as a plain JSON number.
type Rate decimal.Decimal

// MarshalJSON implements json.Marshaler.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(r).String()), nil
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Base DTOs ---

// CatalogResponse contains the fields shared by catalog entities.
type CatalogResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DeletionMark bool      `json:"deletionMark"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromCatalog creates CatalogResponse from entity.Catalog.
func FromCatalog(c entity.Catalog) CatalogResponse {
	return CatalogResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

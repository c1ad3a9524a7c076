package entity

import (
	"context"
	"strings"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
)

// Catalog is the base type for reference data owned by a business
// (items, vendors).
type Catalog struct {
	BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Entity is what the generic catalog service needs from a catalog row.
type Entity interface {
	Validatable
	GetID() id.ID
	SetBusiness(businessID id.ID)
}

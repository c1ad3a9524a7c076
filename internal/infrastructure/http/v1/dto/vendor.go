package dto

import (
	"encoding/json"
	"strings"
	"time"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/domain/sales"
)

// --- Request DTOs ---

// CreateVendorRequest is the request body for registering a vendor.
// CommissionRate may be a JSON number or a numeric string.
type CreateVendorRequest struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	CommissionRate json.RawMessage `json:"commissionRate"`
	Status         vendor.Status   `json:"status"`
	JoinDate       *time.Time      `json:"joinDate"`
}

// ToEntity validates the request and builds a vendor.
func (r *CreateVendorRequest) ToEntity() (*vendor.Vendor, error) {
	v, err := vendor.NewAdHoc(r.AdHoc())
	if err != nil {
		return nil, err
	}
	if r.Status != "" {
		v.Status = r.Status
	}
	if r.JoinDate != nil {
		v.JoinDate = r.JoinDate.UTC().Truncate(24 * time.Hour)
	}
	return v, nil
}

// AdHoc returns the fields used for mid-session registration.
func (r *CreateVendorRequest) AdHoc() vendor.AdHocInput {
	return vendor.AdHocInput{
		Name:           r.Name,
		CommissionRate: r.CommissionRate,
		Email:          r.Email,
		Phone:          r.Phone,
	}
}

// UpdateVendorRequest is the request body for updating a vendor.
type UpdateVendorRequest struct {
	Name           string          `json:"name" binding:"required"`
	Email          *string         `json:"email"`
	Phone          *string         `json:"phone"`
	CommissionRate json.RawMessage `json:"commissionRate"`
	Status         vendor.Status   `json:"status"`
	Version        int             `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity. An absent commission rate
// keeps the current one.
func (r *UpdateVendorRequest) ApplyTo(v *vendor.Vendor) error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	v.Name = name

	if len(r.CommissionRate) > 0 {
		rate, err := vendor.ParseCommissionRate(r.CommissionRate)
		if err != nil {
			return err
		}
		v.CommissionRate = rate
	}
	if r.Email != nil {
		v.Email = trimmedOrNil(*r.Email)
	}
	if r.Phone != nil {
		v.Phone = trimmedOrNil(*r.Phone)
	}
	if r.Status != "" {
		v.Status = r.Status
	}
	v.Version = r.Version
	return nil
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// --- Response DTOs ---

// VendorResponse is the response body for a vendor.
type VendorResponse struct {
	CatalogResponse
	Email          *string       `json:"email,omitempty"`
	Phone          *string       `json:"phone,omitempty"`
	CommissionRate Rate          `json:"commissionRate"`
	Status         vendor.Status `json:"status"`
	JoinDate       string        `json:"joinDate"`
}

// FromVendor converts domain entity to response DTO.
func FromVendor(v *vendor.Vendor) *VendorResponse {
	return &VendorResponse{
		CatalogResponse: FromCatalog(v.Catalog),
		Email:           v.Email,
		Phone:           v.Phone,
		CommissionRate:  Rate(v.CommissionRate),
		Status:          v.Status,
		JoinDate:        v.JoinDate.Format("2006-01-02"),
	}
}

// VendorSaleResponse is one vendor's part of one submitted record.
type VendorSaleResponse struct {
	RecordID       string             `json:"recordId"`
	Number         string             `json:"number"`
	Date           string             `json:"date"`
	VendorID       string             `json:"vendorId"`
	VendorName     string             `json:"vendorName"`
	CommissionRate Rate               `json:"commissionRate"`
	Items          []LineItemResponse `json:"items"`
	TotalsResponse
}

// FromVendorSales converts vendor sales history.
func FromVendorSales(in []sales.VendorSale) []VendorSaleResponse {
	out := make([]VendorSaleResponse, len(in))
	for i, s := range in {
		out[i] = VendorSaleResponse{
			RecordID:       s.RecordID.String(),
			Number:         s.Number,
			Date:           s.Date,
			VendorID:       s.VendorID.String(),
			VendorName:     s.VendorName,
			CommissionRate: Rate(s.CommissionRate),
			Items:          fromLines(s.Items),
			TotalsResponse: FromTotals(s.Totals),
		}
	}
	return out
}

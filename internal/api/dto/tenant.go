package dto

import (
	"github.com/invobase/invobase/internal/domain/tenant"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// CreateTenantRequest onboards a new company.
type CreateTenantRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

func (r *CreateTenantRequest) Validate() error {
	if r.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Provide the company name").
			Mark(ierr.ErrValidation)
	}
	if r.ContactEmail == "" {
		return ierr.NewError("contact_email is required").
			WithHint("Provide a contact email").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateTenantRequest) ToTenant() *tenant.Tenant {
	t := &tenant.Tenant{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TENANT),
		Name:         r.Name,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Address:      r.Address,
		Status:       types.StatusActive,
	}
	return t
}

// TenantResponse is the tenant shape returned to callers.
type TenantResponse struct {
	*tenant.Tenant
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

package dto

import (
	"time"

	"github.com/invobase/invobase/internal/domain/invoice"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest carries the caller-supplied fields for a new
// invoice. InvoiceNumber is optional; when absent a per-tenant-per-year
// number is generated.
type CreateInvoiceRequest struct {
	InvoiceNumber *string         `json:"invoice_number,omitempty"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email,omitempty"`
	ClientAddress string          `json:"client_address,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Notes         string          `json:"notes,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if r.ClientName == "" {
		return ierr.NewError("client_name is required").
			WithHint("Provide the client name").
			Mark(ierr.ErrValidation)
	}
	if r.DueDate.IsZero() {
		return ierr.NewError("due_date is required").
			WithHint("Provide a due date").
			Mark(ierr.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHintf("Amount %s is not greater than zero", r.Amount).
			Mark(ierr.ErrValidation)
	}
	if r.Amount.Exponent() < -2 {
		return ierr.NewError("amount must have at most two decimal places").
			WithHintf("Amount %s has more than two decimal places", r.Amount).
			Mark(ierr.ErrValidation)
	}
	if r.InvoiceNumber != nil && *r.InvoiceNumber == "" {
		return ierr.NewError("invoice_number must not be empty when provided").
			WithHint("Omit invoice_number to have one generated").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateInvoiceRequest) ToInvoice(scope types.TenantScope) *invoice.Invoice {
	return &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		ClientName:    r.ClientName,
		ClientEmail:   r.ClientEmail,
		ClientAddress: r.ClientAddress,
		Amount:        r.Amount,
		InvoiceStatus: types.InvoiceStatusDraft,
		DueDate:       r.DueDate.UTC(),
		Notes:         r.Notes,
		BaseModel:     types.GetDefaultBaseModel(scope),
	}
}

// UpdateInvoiceRequest applies free-form edits to a non-paid invoice.
// Nil fields are left unchanged.
type UpdateInvoiceRequest struct {
	ClientName    *string          `json:"client_name,omitempty"`
	ClientEmail   *string          `json:"client_email,omitempty"`
	ClientAddress *string          `json:"client_address,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	if r.Amount != nil {
		if !r.Amount.IsPositive() {
			return ierr.NewError("amount must be positive").
				WithHintf("Amount %s is not greater than zero", r.Amount).
				Mark(ierr.ErrValidation)
		}
		if r.Amount.Exponent() < -2 {
			return ierr.NewError("amount must have at most two decimal places").
				WithHintf("Amount %s has more than two decimal places", r.Amount).
				Mark(ierr.ErrValidation)
		}
	}
	if r.ClientName != nil && *r.ClientName == "" {
		return ierr.NewError("client_name must not be empty").
			WithHint("Provide a non-empty client name").
			Mark(ierr.ErrValidation)
	}
	if r.DueDate != nil && r.DueDate.IsZero() {
		return ierr.NewError("due_date must not be zero").
			WithHint("Provide a valid due date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Apply copies the set fields onto the invoice.
func (r *UpdateInvoiceRequest) Apply(inv *invoice.Invoice) {
	if r.ClientName != nil {
		inv.ClientName = *r.ClientName
	}
	if r.ClientEmail != nil {
		inv.ClientEmail = *r.ClientEmail
	}
	if r.ClientAddress != nil {
		inv.ClientAddress = *r.ClientAddress
	}
	if r.Amount != nil {
		inv.Amount = *r.Amount
	}
	if r.DueDate != nil {
		inv.DueDate = r.DueDate.UTC()
	}
	if r.Notes != nil {
		inv.Notes = *r.Notes
	}
}

// InvoiceResponse is the invoice shape returned to callers.
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse is a paginated invoice listing.
type ListInvoicesResponse struct {
	Items  []*InvoiceResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

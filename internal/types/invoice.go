package types

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
// Transitions: draft -> sent -> paid, draft -> paid, sent -> sent.
// Paid is terminal.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

func (s InvoiceStatus) Validate() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

// InvoiceNumberPrefix prefixes every auto-generated invoice number,
// e.g. INV-20260042 for the 42nd invoice of 2026.
const InvoiceNumberPrefix = "INV-"

// InvoiceFilter narrows invoice list queries. All criteria are combined
// with AND; zero values are ignored. Results are always restricted to the
// caller's tenant regardless of the filter.
type InvoiceFilter struct {
	Status        *InvoiceStatus `json:"status,omitempty"`
	ClientName    string         `json:"client_name,omitempty"`
	InvoiceNumber string         `json:"invoice_number,omitempty"`
	DueDateFrom   *time.Time     `json:"due_date_from,omitempty"`
	DueDateTo     *time.Time     `json:"due_date_to,omitempty"`
	Limit         int            `json:"limit,omitempty"`
	Offset        int            `json:"offset,omitempty"`
}

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 1000
)

func (f *InvoiceFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return FilterDefaultLimit
	}
	if f.Limit > FilterMaxLimit {
		return FilterMaxLimit
	}
	return f.Limit
}

func (f *InvoiceFilter) GetOffset() int {
	if f == nil || f.Offset < 0 {
		return 0
	}
	return f.Offset
}

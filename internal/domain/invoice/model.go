package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model. TenantID (in BaseModel) is
// set once on create and never reassigned; InvoiceNumber is unique within
// the owning tenant.
type Invoice struct {
	ID            string              `json:"id" db:"id"`
	InvoiceNumber string              `json:"invoice_number" db:"invoice_number"`
	ClientName    string              `json:"client_name" db:"client_name"`
	ClientEmail   string              `json:"client_email" db:"client_email"`
	ClientAddress string              `json:"client_address" db:"client_address"`
	Amount        decimal.Decimal     `json:"amount" db:"amount"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status" db:"invoice_status"`
	DueDate       time.Time           `json:"due_date" db:"due_date"`
	PaidAt        *time.Time          `json:"paid_at,omitempty" db:"paid_at"`
	Notes         string              `json:"notes,omitempty" db:"notes"`
	types.BaseModel
}

func (i *Invoice) IsDraft() bool {
	return i.InvoiceStatus == types.InvoiceStatusDraft
}

func (i *Invoice) IsSent() bool {
	return i.InvoiceStatus == types.InvoiceStatusSent
}

func (i *Invoice) IsPaid() bool {
	return i.InvoiceStatus == types.InvoiceStatusPaid
}

// IsOverdue reports whether a non-paid invoice's due date has passed.
func (i *Invoice) IsOverdue() bool {
	return !i.IsPaid() && i.DueDate.Before(time.Now().UTC())
}

func (i *Invoice) Validate() error {
	if i.ClientName == "" {
		return ierr.NewError("client_name is required").
			WithHint("Provide the client name").
			Mark(ierr.ErrValidation)
	}

	if i.DueDate.IsZero() {
		return ierr.NewError("due_date is required").
			WithHint("Provide a due date").
			Mark(ierr.ErrValidation)
	}

	if !i.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHintf("Amount %s is not greater than zero", i.Amount).
			Mark(ierr.ErrValidation)
	}

	// Amounts are fixed-point with two fractional digits; anything finer
	// would drift when aggregated into stats.
	if i.Amount.Exponent() < -2 {
		return ierr.NewError("amount must have at most two decimal places").
			WithHintf("Amount %s has more than two decimal places", i.Amount).
			Mark(ierr.ErrValidation)
	}

	if !i.InvoiceStatus.Validate() {
		return ierr.NewError("invalid invoice status").
			WithHintf("Status %s is not a known invoice status", i.InvoiceStatus).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// FormatNumber renders an invoice number for the given year and sequence,
// e.g. FormatNumber(2026, 7) == "INV-20260007".
func FormatNumber(year int, seq int) string {
	return fmt.Sprintf("%s%d%04d", types.InvoiceNumberPrefix, year, seq)
}

// YearPrefix returns the generated-number prefix for a year, e.g. "INV-2026".
func YearPrefix(year int) string {
	return fmt.Sprintf("%s%d", types.InvoiceNumberPrefix, year)
}

// SequenceFromNumber extracts the 4-digit sequence from a generated invoice
// number. Numbers supplied by callers may not match the generated format;
// those contribute nothing to the sequence.
func SequenceFromNumber(number string, year int) (int, bool) {
	prefix := YearPrefix(year)
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	suffix := strings.TrimPrefix(number, prefix)
	if len(suffix) != 4 {
		return 0, false
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return seq, true
}

package invoice

import (
	"testing"
	"time"

	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validInvoice() *Invoice {
	return &Invoice{
		ID:            "inv_test",
		InvoiceNumber: "INV-20260001",
		ClientName:    "Acme Corp",
		Amount:        decimal.NewFromFloat(100.50),
		InvoiceStatus: types.InvoiceStatusDraft,
		DueDate:       time.Now().UTC().AddDate(0, 1, 0),
	}
}

func TestInvoiceValidate(t *testing.T) {
	t.Run("valid invoice", func(t *testing.T) {
		assert.NoError(t, validInvoice().Validate())
	})

	t.Run("missing client name", func(t *testing.T) {
		inv := validInvoice()
		inv.ClientName = ""
		err := inv.Validate()
		assert.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("zero due date", func(t *testing.T) {
		inv := validInvoice()
		inv.DueDate = time.Time{}
		assert.Error(t, inv.Validate())
	})

	t.Run("non-positive amount", func(t *testing.T) {
		inv := validInvoice()
		inv.Amount = decimal.Zero
		assert.Error(t, inv.Validate())

		inv.Amount = decimal.NewFromInt(-10)
		assert.Error(t, inv.Validate())
	})

	t.Run("more than two decimal places", func(t *testing.T) {
		inv := validInvoice()
		inv.Amount = decimal.RequireFromString("10.999")
		assert.Error(t, inv.Validate())

		inv.Amount = decimal.RequireFromString("10.99")
		assert.NoError(t, inv.Validate())
	})

	t.Run("unknown status", func(t *testing.T) {
		inv := validInvoice()
		inv.InvoiceStatus = types.InvoiceStatus("void")
		assert.Error(t, inv.Validate())
	})
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-20260007", FormatNumber(2026, 7))
	assert.Equal(t, "INV-20260042", FormatNumber(2026, 42))
	assert.Equal(t, "INV-20261234", FormatNumber(2026, 1234))
}

func TestSequenceFromNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		year   int
		seq    int
		ok     bool
	}{
		{"generated number", "INV-20260007", 2026, 7, true},
		{"high sequence", "INV-20269999", 2026, 9999, true},
		{"different year", "INV-20250007", 2026, 0, false},
		{"custom number", "CUSTOM-001", 2026, 0, false},
		{"suffix too short", "INV-2026007", 2026, 0, false},
		{"suffix too long", "INV-202600007", 2026, 0, false},
		{"non-numeric suffix", "INV-2026abcd", 2026, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, ok := SequenceFromNumber(tt.number, tt.year)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.seq, seq)
		})
	}
}

func TestInvoicePredicates(t *testing.T) {
	inv := validInvoice()
	assert.True(t, inv.IsDraft())
	assert.False(t, inv.IsSent())
	assert.False(t, inv.IsPaid())

	inv.InvoiceStatus = types.InvoiceStatusSent
	assert.True(t, inv.IsSent())

	inv.InvoiceStatus = types.InvoiceStatusPaid
	assert.True(t, inv.IsPaid())
}

func TestIsOverdue(t *testing.T) {
	inv := validInvoice()
	assert.False(t, inv.IsOverdue())

	inv.DueDate = time.Now().UTC().AddDate(0, 0, -1)
	assert.True(t, inv.IsOverdue())

	// paid invoices are never overdue
	inv.InvoiceStatus = types.InvoiceStatusPaid
	assert.False(t, inv.IsOverdue())
}

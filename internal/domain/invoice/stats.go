package invoice

import "github.com/shopspring/decimal"

// Stats is the aggregate usage summary for one tenant's live invoices.
// PendingAmount covers draft and sent invoices; all amounts are exact
// decimal sums, never floats.
type Stats struct {
	Total         int             `json:"total"`
	Draft         int             `json:"draft"`
	Sent          int             `json:"sent"`
	Paid          int             `json:"paid"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// NewStats returns a zero-valued Stats with properly initialized decimals.
func NewStats() *Stats {
	return &Stats{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
	}
}

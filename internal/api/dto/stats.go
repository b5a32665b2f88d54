package dto

import (
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// InvoiceStatsResponse is the cached per-tenant usage summary.
type InvoiceStatsResponse struct {
	Total         int             `json:"total"`
	Draft         int             `json:"draft"`
	Sent          int             `json:"sent"`
	Paid          int             `json:"paid"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

func NewInvoiceStatsResponse(stats *invoice.Stats) *InvoiceStatsResponse {
	return &InvoiceStatsResponse{
		Total:         stats.Total,
		Draft:         stats.Draft,
		Sent:          stats.Sent,
		Paid:          stats.Paid,
		TotalAmount:   stats.TotalAmount,
		PaidAmount:    stats.PaidAmount,
		PendingAmount: stats.PendingAmount,
	}
}

package types

import (
	"encoding/json"
	"time"
)

// Event is a domain notification emitted after a lifecycle mutation
// commits. It is delivered asynchronously to external consumers
// (email/audit listeners) with at-least-once semantics.
type Event struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	TenantID  string          `json:"tenant_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// invoice event names
const (
	EventInvoiceCreated = "invoice.created"
	EventInvoicePaid    = "invoice.paid"
)

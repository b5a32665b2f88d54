package invoice

import (
	"context"

	"github.com/invobase/invobase/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Every method is scoped: reads never return rows from another tenant and
// creates stamp the scope's tenant id. Soft-deleted invoices are excluded
// from all reads.
type Repository interface {
	// Create persists a new invoice under the scope's tenant. An invoice
	// carrying a different tenant id is rejected with a tenant mismatch
	// error before any write.
	Create(ctx context.Context, scope types.TenantScope, inv *Invoice) error

	// Get retrieves an invoice by ID. A row owned by another tenant is
	// indistinguishable from a missing row: both are not found.
	Get(ctx context.Context, scope types.TenantScope, id string) (*Invoice, error)

	// Update updates an existing invoice in place.
	Update(ctx context.Context, scope types.TenantScope, inv *Invoice) error

	// Delete soft-deletes an invoice.
	Delete(ctx context.Context, scope types.TenantScope, id string) error

	// List retrieves invoices matching the filter, newest first.
	List(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the number of invoices matching the filter.
	Count(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) (int, error)

	// ExistsByNumber reports whether a live invoice with the exact number
	// exists for the tenant.
	ExistsByNumber(ctx context.Context, scope types.TenantScope, number string) (bool, error)

	// NextSequence derives the next invoice-number sequence for the given
	// year: one past the highest live generated number, starting at 1.
	// Callers must hold the tenant's lock across NextSequence and the
	// subsequent Create.
	NextSequence(ctx context.Context, scope types.TenantScope, year int) (int, error)

	// GetStats aggregates counts and decimal amounts over the tenant's
	// live invoices.
	GetStats(ctx context.Context, scope types.TenantScope) (*Stats, error)
}

package subscription

import (
	"context"
	"time"

	"github.com/invobase/invobase/internal/types"
)

// Repository defines the interface for subscription persistence operations.
// Scoping rules match the invoice repository: reads are tenant-filtered,
// creates are tenant-stamped.
type Repository interface {
	// Create persists a new subscription under the scope's tenant.
	Create(ctx context.Context, scope types.TenantScope, sub *Subscription) error

	// Get retrieves a subscription by ID.
	Get(ctx context.Context, scope types.TenantScope, id string) (*Subscription, error)

	// GetByTenant retrieves the tenant's current subscription, or a
	// not-found error when the tenant has none.
	GetByTenant(ctx context.Context, scope types.TenantScope) (*Subscription, error)

	// Update updates an existing subscription.
	Update(ctx context.Context, scope types.TenantScope, sub *Subscription) error

	// ListEndedBefore returns canceled subscriptions whose ends_at has
	// passed the cutoff. Used by the expiry sweep under the system scope.
	ListEndedBefore(ctx context.Context, scope types.TenantScope, cutoff time.Time) ([]*Subscription, error)
}

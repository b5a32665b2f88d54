package tenant

import "context"

// Repository defines the interface for tenant persistence operations.
// Tenants are not themselves tenant-scoped; they are the scope.
type Repository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *Tenant) error

	// Get retrieves a tenant by ID
	Get(ctx context.Context, id string) (*Tenant, error)

	// Update updates profile fields of an existing tenant
	Update(ctx context.Context, tenant *Tenant) error
}

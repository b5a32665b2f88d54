package types

import "fmt"

// TenantScope identifies the acting tenant and the actor's role within it.
// Every repository and service operation takes a scope explicitly; nothing
// in the codebase resolves the current tenant from ambient state.
type TenantScope struct {
	TenantID string
	Role     UserRole

	// system marks a privileged cross-tenant scope used only by
	// maintenance operations such as the subscription expiry sweep.
	system bool
}

// NewTenantScope builds a scope for a regular tenant-bound actor.
func NewTenantScope(tenantID string, role UserRole) TenantScope {
	return TenantScope{TenantID: tenantID, Role: role}
}

// SystemScope returns the privileged cross-tenant scope. It must be
// requested explicitly and is never the default for any operation.
func SystemScope() TenantScope {
	return TenantScope{system: true, Role: RoleOwner}
}

// IsSystem reports whether the scope bypasses tenant filtering.
func (s TenantScope) IsSystem() bool {
	return s.system
}

func (s TenantScope) Validate() error {
	if s.system {
		return nil
	}
	if s.TenantID == "" {
		return fmt.Errorf("tenant scope has no tenant id")
	}
	return nil
}

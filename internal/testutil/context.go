package testutil

import (
	"context"

	"github.com/invobase/invobase/internal/types"
)

const (
	// DefaultTenantID is the tenant most suite tests act as.
	DefaultTenantID = "tenant_test_default"
	// OtherTenantID is a second tenant used in isolation tests.
	OtherTenantID = "tenant_test_other"
	// DefaultUserID is the acting user stamped into the test context.
	DefaultUserID = "user_test_default"
)

// SetupContext returns a context carrying the tracing identity every
// request context would have in production.
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	ctx = types.SetUserID(ctx, DefaultUserID)
	return ctx
}

// DefaultScope returns an owner scope for the default test tenant.
func DefaultScope() types.TenantScope {
	return types.NewTenantScope(DefaultTenantID, types.RoleOwner)
}

// OtherScope returns an owner scope for the second test tenant.
func OtherScope() types.TenantScope {
	return types.NewTenantScope(OtherTenantID, types.RoleOwner)
}

// MemberScope returns a member scope for the default test tenant.
func MemberScope() types.TenantScope {
	return types.NewTenantScope(DefaultTenantID, types.RoleMember)
}

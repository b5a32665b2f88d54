package service

import "sync"

// TenantLockManager serializes mutating invoice operations per tenant.
// The lock is held across the quota check, invoice-number derivation and
// the write, so two concurrent creates for the same tenant can neither
// both pass a one-slot-left quota check nor be assigned the same number.
// Granularity is strictly per tenant; tenants never contend with each
// other.
type TenantLockManager struct {
	locks sync.Map // tenant id -> *sync.Mutex
}

func NewTenantLockManager() *TenantLockManager {
	return &TenantLockManager{}
}

// Lock acquires the tenant's lock and returns the unlock function.
func (m *TenantLockManager) Lock(tenantID string) func() {
	mu, _ := m.locks.LoadOrStore(tenantID, &sync.Mutex{})
	mutex := mu.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}

package testutil

import (
	"context"
	"fmt"

	"github.com/invobase/invobase/internal/domain/tenant"
	ierr "github.com/invobase/invobase/internal/errors"
)

// InMemoryTenantStore implements tenant.Repository
type InMemoryTenantStore struct {
	*InMemoryStore[*tenant.Tenant]
}

// NewInMemoryTenantStore creates a new in-memory tenant store
func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		InMemoryStore: NewInMemoryStore[*tenant.Tenant](),
	}
}

func copyTenant(t *tenant.Tenant) *tenant.Tenant {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}

func (s *InMemoryTenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, t.ID, copyTenant(t))
}

func (s *InMemoryTenantStore) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("tenant not found").
			WithHintf("Tenant %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return copyTenant(t), nil
}

func (s *InMemoryTenantStore) Update(ctx context.Context, t *tenant.Tenant) error {
	if err := s.InMemoryStore.Update(ctx, t.ID, copyTenant(t)); err != nil {
		return ierr.NewError("tenant not found").
			WithHintf("Tenant %s does not exist", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

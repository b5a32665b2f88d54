package testutil

import (
	"context"
	"fmt"

	"github.com/invobase/invobase/internal/domain/user"
	ierr "github.com/invobase/invobase/internal/errors"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

// NewInMemoryUserStore creates a new in-memory user store
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

func copyUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	out := *u
	if u.TenantID != nil {
		tenantID := *u.TenantID
		out.TenantID = &tenantID
	}
	return &out
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, u.ID, copyUser(u))
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("user not found").
			WithHintf("User %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) Update(ctx context.Context, u *user.User) error {
	if err := s.InMemoryStore.Update(ctx, u.ID, copyUser(u)); err != nil {
		return ierr.NewError("user not found").
			WithHintf("User %s does not exist", u.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/invobase/invobase/internal/domain/subscription"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	out := *sub
	if sub.TrialEndsAt != nil {
		trialEndsAt := *sub.TrialEndsAt
		out.TrialEndsAt = &trialEndsAt
	}
	if sub.EndsAt != nil {
		endsAt := *sub.EndsAt
		out.EndsAt = &endsAt
	}
	return &out
}

func subscriptionNotFound(id string) error {
	return ierr.NewError("subscription not found").
		WithHintf("Subscription %s does not exist", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, scope types.TenantScope, sub *subscription.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription cannot be nil")
	}
	if err := scope.Validate(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if sub.TenantID != "" && sub.TenantID != scope.TenantID {
		return ierr.NewError("subscription tenant does not match scope").
			WithHint("A subscription cannot be created under another tenant").
			Mark(ierr.ErrTenantMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		return ierr.NewError("subscription already exists").
			WithHintf("Subscription %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	stored := copySubscription(sub)
	stored.TenantID = scope.TenantID
	s.subscriptions[sub.ID] = stored
	sub.TenantID = scope.TenantID
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, scope types.TenantScope, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subscriptions[id]
	if !exists || sub.Status == types.StatusDeleted {
		return nil, subscriptionNotFound(id)
	}
	if !scope.IsSystem() && sub.TenantID != scope.TenantID {
		return nil, subscriptionNotFound(id)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetByTenant(ctx context.Context, scope types.TenantScope) (*subscription.Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *subscription.Subscription
	for _, sub := range s.subscriptions {
		if sub.TenantID != scope.TenantID || sub.Status == types.StatusDeleted {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}

	if latest == nil {
		return nil, ierr.NewError("tenant has no subscription").
			WithHint("Start a subscription for this tenant first").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(latest), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, scope types.TenantScope, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.subscriptions[sub.ID]
	if !exists || existing.Status == types.StatusDeleted {
		return subscriptionNotFound(sub.ID)
	}
	if !scope.IsSystem() && existing.TenantID != scope.TenantID {
		return subscriptionNotFound(sub.ID)
	}

	stored := copySubscription(sub)
	stored.TenantID = existing.TenantID
	s.subscriptions[sub.ID] = stored
	return nil
}

func (s *InMemorySubscriptionStore) ListEndedBefore(ctx context.Context, scope types.TenantScope, cutoff time.Time) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ended := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.Status == types.StatusDeleted {
			continue
		}
		if !scope.IsSystem() && sub.TenantID != scope.TenantID {
			continue
		}
		if sub.SubscriptionStatus == types.SubscriptionStatusCanceled &&
			sub.EndsAt != nil && sub.EndsAt.Before(cutoff) {
			ended = append(ended, copySubscription(sub))
		}
	}
	return ended, nil
}

// Clear removes all subscriptions from the store
func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*subscription.Subscription)
}

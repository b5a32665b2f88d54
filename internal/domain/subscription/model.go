package subscription

import (
	"time"

	"github.com/invobase/invobase/internal/types"
)

// Subscription is a tenant's plan membership. At most one subscription
// exists per tenant; it is never hard-deleted, only marked canceled or
// expired. EndsAt is meaningful only for canceled/expired states.
type Subscription struct {
	ID                 string                   `json:"id" db:"id"`
	Plan               types.PlanType           `json:"plan" db:"plan"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" db:"subscription_status"`
	TrialEndsAt        *time.Time               `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	EndsAt             *time.Time               `json:"ends_at,omitempty" db:"ends_at"`
	types.BaseModel
}

func (s *Subscription) IsActive() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive
}

// OnTrial reports whether the subscription is trialing and the trial has
// not yet lapsed.
func (s *Subscription) OnTrial() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusTrial &&
		s.TrialEndsAt != nil && s.TrialEndsAt.After(time.Now().UTC())
}

func (s *Subscription) IsCanceled() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusCanceled
}

// IsExpired reports whether the subscription has expired, either
// explicitly or by its ends_at having passed.
func (s *Subscription) IsExpired() bool {
	if s.SubscriptionStatus == types.SubscriptionStatusExpired {
		return true
	}
	return s.EndsAt != nil && s.EndsAt.Before(time.Now().UTC())
}

// Usable reports whether the subscription currently grants plan access:
// active, or trialing, or canceled but still inside the grace period.
func (s *Subscription) Usable() bool {
	switch s.SubscriptionStatus {
	case types.SubscriptionStatusActive:
		return true
	case types.SubscriptionStatusTrial:
		return s.OnTrial()
	case types.SubscriptionStatusCanceled:
		return s.EndsAt != nil && s.EndsAt.After(time.Now().UTC())
	}
	return false
}

package types

// SubscriptionStatus is the lifecycle state of a subscription.
// expired is terminal; canceled can return to active via resume.
type SubscriptionStatus string

const (
	SubscriptionStatusTrial    SubscriptionStatus = "trial"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) Validate() bool {
	switch s {
	case SubscriptionStatusTrial, SubscriptionStatusActive,
		SubscriptionStatusCanceled, SubscriptionStatusExpired:
		return true
	}
	return false
}

const (
	// TrialPeriodDays is how long a fresh trial subscription runs.
	TrialPeriodDays = 14

	// GracePeriodDays is how long a non-immediate cancellation keeps the
	// subscription nominally alive before ends_at.
	GracePeriodDays = 30
)

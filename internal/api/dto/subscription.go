package dto

import (
	"github.com/invobase/invobase/internal/domain/subscription"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// CreateSubscriptionRequest starts a subscription for the scope's tenant.
type CreateSubscriptionRequest struct {
	Plan   types.PlanType           `json:"plan"`
	Status types.SubscriptionStatus `json:"status"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if !r.Plan.Validate() {
		return ierr.NewError("invalid plan").
			WithHintf("Plan %s is not a known plan", r.Plan).
			Mark(ierr.ErrValidation)
	}
	switch r.Status {
	case types.SubscriptionStatusTrial, types.SubscriptionStatusActive:
	default:
		return ierr.NewError("invalid initial subscription status").
			WithHintf("Subscriptions start as trial or active, not %s", r.Status).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionResponse is the subscription shape returned to callers.
type SubscriptionResponse struct {
	*subscription.Subscription
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{Subscription: sub}
}

package service

import (
	"context"
	"time"

	"github.com/invobase/invobase/internal/api/dto"
	"github.com/invobase/invobase/internal/domain/subscription"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// SubscriptionService owns the subscription lifecycle:
// trial/active/canceled/expired with grace-period semantics. Payment
// gateway integration is deliberately absent; only local state is managed.
type SubscriptionService interface {
	// CreateSubscription starts a subscription for the tenant, canceling
	// any currently active one immediately. Trials run for 14 days.
	CreateSubscription(ctx context.Context, scope types.TenantScope, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)

	// GetSubscription returns the tenant's current subscription.
	GetSubscription(ctx context.Context, scope types.TenantScope) (*dto.SubscriptionResponse, error)

	// ChangePlan switches the plan, forces the subscription active and
	// ends any trial.
	ChangePlan(ctx context.Context, scope types.TenantScope, newPlan types.PlanType) (*dto.SubscriptionResponse, error)

	// CancelSubscription cancels, either immediately or with a 30-day
	// grace period.
	CancelSubscription(ctx context.Context, scope types.TenantScope, immediately bool) (*dto.SubscriptionResponse, error)

	// ResumeSubscription reactivates a canceled subscription.
	ResumeSubscription(ctx context.Context, scope types.TenantScope) (*dto.SubscriptionResponse, error)

	// ExpireSubscription marks a subscription expired unconditionally.
	ExpireSubscription(ctx context.Context, scope types.TenantScope, id string) (*dto.SubscriptionResponse, error)

	// ExpireOverdue sweeps canceled subscriptions whose grace period has
	// lapsed. Requires the system scope.
	ExpireOverdue(ctx context.Context, scope types.TenantScope) (int, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, scope types.TenantScope, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.SubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}

		// There is at most one subscription per tenant; an active one is
		// canceled immediately before the replacement is created.
		if existing != nil && existing.IsActive() {
			now := time.Now().UTC()
			existing.SubscriptionStatus = types.SubscriptionStatusCanceled
			existing.EndsAt = &now
			existing.UpdatedAt = now
			if err := s.SubscriptionRepo.Update(ctx, scope, existing); err != nil {
				return err
			}
		}

		sub := &subscription.Subscription{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			Plan:               req.Plan,
			SubscriptionStatus: req.Status,
			BaseModel:          types.GetDefaultBaseModel(scope),
		}

		if req.Status == types.SubscriptionStatusTrial {
			trialEnd := time.Now().UTC().AddDate(0, 0, types.TrialPeriodDays)
			sub.TrialEndsAt = &trialEnd
		}

		if err := s.SubscriptionRepo.Create(ctx, scope, sub); err != nil {
			return err
		}

		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})

	if err != nil {
		s.Logger.Errorw("failed to create subscription",
			"error", err,
			"tenant_id", scope.TenantID,
			"plan", req.Plan,
		)
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"subscription_id", resp.ID,
		"tenant_id", scope.TenantID,
		"plan", req.Plan,
		"status", req.Status,
	)

	return resp, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, scope types.TenantScope) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, scope types.TenantScope, newPlan types.PlanType) (*dto.SubscriptionResponse, error) {
	if !newPlan.Validate() {
		return nil, ierr.NewError("invalid plan").
			WithHintf("Plan %s is not a known plan", newPlan).
			Mark(ierr.ErrValidation)
	}

	var resp *dto.SubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
		if err != nil {
			return err
		}

		oldPlan := sub.Plan
		sub.Plan = newPlan
		sub.SubscriptionStatus = types.SubscriptionStatusActive
		// changing plans ends any trial
		sub.TrialEndsAt = nil
		sub.UpdatedAt = time.Now().UTC()

		if err := s.SubscriptionRepo.Update(ctx, scope, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription plan changed",
			"subscription_id", sub.ID,
			"tenant_id", scope.TenantID,
			"old_plan", oldPlan,
			"new_plan", newPlan,
		)

		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, scope types.TenantScope, immediately bool) (*dto.SubscriptionResponse, error) {
	var resp *dto.SubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sub.SubscriptionStatus = types.SubscriptionStatusCanceled
		if immediately {
			sub.EndsAt = &now
		} else {
			graceEnd := now.AddDate(0, 0, types.GracePeriodDays)
			sub.EndsAt = &graceEnd
		}
		sub.UpdatedAt = now

		if err := s.SubscriptionRepo.Update(ctx, scope, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription canceled",
			"subscription_id", sub.ID,
			"tenant_id", scope.TenantID,
			"immediately", immediately,
		)

		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, scope types.TenantScope) (*dto.SubscriptionResponse, error) {
	var resp *dto.SubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
		if err != nil {
			return err
		}

		if !sub.IsCanceled() {
			return ierr.NewError("only canceled subscriptions can be resumed").
				WithHintf("Subscription %s is %s", sub.ID, sub.SubscriptionStatus).
				Mark(ierr.ErrStateConflict)
		}

		sub.SubscriptionStatus = types.SubscriptionStatusActive
		sub.EndsAt = nil
		sub.UpdatedAt = time.Now().UTC()

		if err := s.SubscriptionRepo.Update(ctx, scope, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription resumed",
			"subscription_id", sub.ID,
			"tenant_id", scope.TenantID,
		)

		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *subscriptionService) ExpireSubscription(ctx context.Context, scope types.TenantScope, id string) (*dto.SubscriptionResponse, error) {
	var resp *dto.SubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriptionRepo.Get(ctx, scope, id)
		if err != nil {
			return err
		}

		sub.SubscriptionStatus = types.SubscriptionStatusExpired
		sub.UpdatedAt = time.Now().UTC()

		if err := s.SubscriptionRepo.Update(ctx, scope, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription expired",
			"subscription_id", sub.ID,
			"tenant_id", sub.TenantID,
		)

		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *subscriptionService) ExpireOverdue(ctx context.Context, scope types.TenantScope) (int, error) {
	if !scope.IsSystem() {
		return 0, ierr.NewError("expiry sweep requires the system scope").
			WithHint("This operation is reserved for maintenance jobs").
			Mark(ierr.ErrPermissionDenied)
	}

	ended, err := s.SubscriptionRepo.ListEndedBefore(ctx, scope, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range ended {
		if _, err := s.ExpireSubscription(ctx, scope, sub.ID); err != nil {
			s.Logger.Errorw("failed to expire subscription",
				"error", err,
				"subscription_id", sub.ID,
				"tenant_id", sub.TenantID,
			)
			continue
		}
		expired++
	}

	return expired, nil
}

package service

import (
	"context"
	"time"

	"github.com/invobase/invobase/internal/api/dto"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// TenantService handles company onboarding. A new tenant starts on a
// free-plan trial so it can create invoices right away.
type TenantService interface {
	// CreateTenant provisions a tenant together with its initial trial
	// subscription and assigns the requesting user as owner.
	CreateTenant(ctx context.Context, userID string, req dto.CreateTenantRequest) (*dto.TenantResponse, error)

	// GetTenant returns a tenant by id.
	GetTenant(ctx context.Context, id string) (*dto.TenantResponse, error)

	// OnboardUser assigns an existing user to the tenant with the given
	// role. Only owners may onboard users.
	OnboardUser(ctx context.Context, scope types.TenantScope, userID string, role types.UserRole) error
}

type tenantService struct {
	ServiceParams
	subscriptions SubscriptionService
}

func NewTenantService(params ServiceParams) TenantService {
	return &tenantService{
		ServiceParams: params,
		subscriptions: NewSubscriptionService(params),
	}
}

func (s *tenantService) CreateTenant(ctx context.Context, userID string, req dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("Tenants must be created by an authenticated user").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor.TenantID != nil {
		return nil, ierr.NewError("user already belongs to a tenant").
			WithHintf("User %s is already a member of tenant %s", actor.ID, *actor.TenantID).
			Mark(ierr.ErrStateConflict)
	}

	var resp *dto.TenantResponse

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		t := req.ToTenant()
		now := time.Now().UTC()
		t.CreatedAt = now
		t.UpdatedAt = now

		if err := s.TenantRepo.Create(ctx, t); err != nil {
			return err
		}

		actor.TenantID = &t.ID
		actor.Role = types.RoleOwner
		actor.UpdatedAt = now
		if err := s.UserRepo.Update(ctx, actor); err != nil {
			return err
		}

		scope := types.NewTenantScope(t.ID, types.RoleOwner)
		subResp, err := s.subscriptions.CreateSubscription(ctx, scope, dto.CreateSubscriptionRequest{
			Plan:   types.PlanFree,
			Status: types.SubscriptionStatusTrial,
		})
		if err != nil {
			return err
		}

		resp = &dto.TenantResponse{Tenant: t, Subscription: subResp}
		return nil
	})

	if err != nil {
		s.Logger.Errorw("failed to create tenant",
			"error", err,
			"user_id", userID,
		)
		return nil, err
	}

	s.Logger.Infow("tenant created",
		"tenant_id", resp.ID,
		"owner_id", userID,
	)

	return resp, nil
}

func (s *tenantService) GetTenant(ctx context.Context, id string) (*dto.TenantResponse, error) {
	t, err := s.TenantRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.TenantResponse{Tenant: t}, nil
}

func (s *tenantService) OnboardUser(ctx context.Context, scope types.TenantScope, userID string, role types.UserRole) error {
	if err := scope.Validate(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if scope.Role != types.RoleOwner {
		return ierr.NewError("only owners can onboard users").
			WithHint("Ask a tenant owner to add this user").
			Mark(ierr.ErrPermissionDenied)
	}
	if !role.Validate() {
		return ierr.NewError("invalid role").
			WithHintf("Role %s is not a known role", role).
			Mark(ierr.ErrValidation)
	}

	u, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.TenantID != nil && *u.TenantID != scope.TenantID {
		return ierr.NewError("user already belongs to another tenant").
			WithHintf("User %s is a member of a different tenant", u.ID).
			Mark(ierr.ErrStateConflict)
	}

	u.TenantID = &scope.TenantID
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	if err := s.UserRepo.Update(ctx, u); err != nil {
		return err
	}

	s.Logger.Infow("user onboarded",
		"user_id", u.ID,
		"tenant_id", scope.TenantID,
		"role", role,
	)

	return nil
}

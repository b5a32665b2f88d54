package service

import (
	"context"

	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// TenantContextService resolves an authenticated actor to the tenant
// scope every other operation requires. Nothing downstream ever resolves
// the acting tenant on its own.
type TenantContextService interface {
	// Resolve returns the scope for the given actor, failing when the
	// actor has no company or the referenced company no longer exists.
	Resolve(ctx context.Context, userID string) (types.TenantScope, error)
}

type tenantContextService struct {
	ServiceParams
}

func NewTenantContextService(params ServiceParams) TenantContextService {
	return &tenantContextService{ServiceParams: params}
}

func (s *tenantContextService) Resolve(ctx context.Context, userID string) (types.TenantScope, error) {
	if userID == "" {
		return types.TenantScope{}, ierr.NewError("user id is required").
			WithHint("Authenticate before resolving a tenant").
			Mark(ierr.ErrValidation)
	}

	actor, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return types.TenantScope{}, err
	}

	if actor.TenantID == nil || *actor.TenantID == "" {
		return types.TenantScope{}, ierr.NewError("user has no company").
			WithHintf("User %s has not been onboarded into a company", userID).
			Mark(ierr.ErrNoTenant)
	}

	t, err := s.TenantRepo.Get(ctx, *actor.TenantID)
	if err != nil || t.IsDeleted() {
		return types.TenantScope{}, ierr.NewError("company does not exist").
			WithHintf("Company %s referenced by user %s was not found", *actor.TenantID, userID).
			Mark(ierr.ErrInvalidTenant)
	}

	return types.NewTenantScope(t.ID, actor.Role), nil
}

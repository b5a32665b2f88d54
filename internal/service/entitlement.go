package service

import (
	"context"

	"github.com/invobase/invobase/internal/api/dto"
	"github.com/invobase/invobase/internal/cache"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
	"github.com/samber/lo"
)

// EntitlementService owns plan-derived quota and feature checks, plus the
// cached per-tenant usage summary.
type EntitlementService interface {
	// GetInvoiceLimit returns the invoice quota for a plan; nil means
	// unlimited, unknown plans get zero.
	GetInvoiceLimit(plan types.PlanType) *int

	// CanCreateInvoice reports whether the tenant may create one more
	// invoice under its current plan. Must be called with the tenant's
	// lock held, inside the same transaction as the create it gates.
	CanCreateInvoice(ctx context.Context, scope types.TenantScope) (bool, error)

	// FeatureEnabled is a static per-plan capability lookup.
	FeatureEnabled(plan types.PlanType, feature types.Feature) bool

	// TenantHasFeature checks a feature against the tenant's current,
	// usable subscription.
	TenantHasFeature(ctx context.Context, scope types.TenantScope, feature types.Feature) (bool, error)

	// GetStats returns the tenant's usage summary, served from cache for
	// up to the configured TTL.
	GetStats(ctx context.Context, scope types.TenantScope) (*dto.InvoiceStatsResponse, error)

	// InvalidateStats drops the tenant's cached usage summary. Invoked
	// synchronously after every invoice mutation commits.
	InvalidateStats(ctx context.Context, tenantID string)
}

type entitlementService struct {
	ServiceParams
}

func NewEntitlementService(params ServiceParams) EntitlementService {
	return &entitlementService{ServiceParams: params}
}

// planInvoiceLimits maps plans to their invoice quota; nil is unlimited.
var planInvoiceLimits = map[types.PlanType]*int{
	types.PlanFree: lo.ToPtr(10),
	types.PlanPro:  nil,
}

// planFeatures is the static feature table per plan.
var planFeatures = map[types.PlanType]map[types.Feature]bool{
	types.PlanFree: {
		types.FeatureCreateInvoices:    true,
		types.FeatureUnlimitedInvoices: false,
		types.FeaturePDFExport:         true,
		types.FeatureEmailInvoices:     false,
		types.FeatureCustomBranding:    false,
	},
	types.PlanPro: {
		types.FeatureCreateInvoices:    true,
		types.FeatureUnlimitedInvoices: true,
		types.FeaturePDFExport:         true,
		types.FeatureEmailInvoices:     true,
		types.FeatureCustomBranding:    true,
	},
}

func (s *entitlementService) GetInvoiceLimit(plan types.PlanType) *int {
	limit, ok := planInvoiceLimits[plan]
	if !ok {
		return lo.ToPtr(0)
	}
	return limit
}

func (s *entitlementService) CanCreateInvoice(ctx context.Context, scope types.TenantScope) (bool, error) {
	if err := scope.Validate(); err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	sub, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
	if err != nil {
		if ierr.IsNotFound(err) {
			// a tenant without a subscription has no quota at all
			return false, nil
		}
		return false, err
	}

	limit := s.GetInvoiceLimit(sub.Plan)
	if limit == nil {
		return true, nil
	}

	count, err := s.InvoiceRepo.Count(ctx, scope, nil)
	if err != nil {
		return false, err
	}

	return count < *limit, nil
}

func (s *entitlementService) FeatureEnabled(plan types.PlanType, feature types.Feature) bool {
	features, ok := planFeatures[plan]
	if !ok {
		return false
	}
	return features[feature]
}

func (s *entitlementService) TenantHasFeature(ctx context.Context, scope types.TenantScope, feature types.Feature) (bool, error) {
	sub, err := s.SubscriptionRepo.GetByTenant(ctx, scope)
	if err != nil {
		if ierr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if !sub.Usable() {
		return false, nil
	}

	return s.FeatureEnabled(sub.Plan, feature), nil
}

func (s *entitlementService) GetStats(ctx context.Context, scope types.TenantScope) (*dto.InvoiceStatsResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	// The tenant id is part of the key: cache hits can never cross tenants.
	// The summary is cached by value and copied out per caller so a caller
	// mutating its response cannot poison later reads.
	key := cache.GenerateKey(cache.PrefixInvoiceStats, scope.TenantID)
	if cached, found := s.Cache.Get(ctx, key); found {
		if stats, ok := cached.(dto.InvoiceStatsResponse); ok {
			return &stats, nil
		}
	}

	stats, err := s.InvoiceRepo.GetStats(ctx, scope)
	if err != nil {
		return nil, err
	}

	resp := dto.NewInvoiceStatsResponse(stats)
	s.Cache.Set(ctx, key, *resp, s.Config.Cache.StatsTTL)
	return resp, nil
}

func (s *entitlementService) InvalidateStats(ctx context.Context, tenantID string) {
	key := cache.GenerateKey(cache.PrefixInvoiceStats, tenantID)
	s.Cache.Delete(ctx, key)
}

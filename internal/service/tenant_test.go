package service

import (
	"testing"
	"time"

	"github.com/invobase/invobase/internal/api/dto"
	"github.com/invobase/invobase/internal/domain/user"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/testutil"
	"github.com/invobase/invobase/internal/types"
	"github.com/stretchr/testify/suite"
)

type TenantServiceSuite struct {
	testutil.BaseServiceTestSuite
	params          ServiceParams
	service         TenantService
	contextResolver TenantContextService
}

func TestTenantService(t *testing.T) {
	suite.Run(t, new(TenantServiceSuite))
}

func (s *TenantServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		EventPublisher:   s.GetPublisher(),
		TenantLocks:      NewTenantLockManager(),
		TenantRepo:       stores.TenantRepo,
		UserRepo:         stores.UserRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		SubscriptionRepo: stores.SubscriptionRepo,
	}
	s.service = NewTenantService(s.params)
	s.contextResolver = NewTenantContextService(s.params)
}

func (s *TenantServiceSuite) seedUser(tenantID *string, role types.UserRole) *user.User {
	now := time.Now().UTC()
	u := &user.User{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Email:     types.GenerateUUID() + "@example.test",
		Name:      "Test User",
		TenantID:  tenantID,
		Role:      role,
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.NoError(s.params.UserRepo.Create(s.GetContext(), u))
	return u
}

func (s *TenantServiceSuite) TestCreateTenantProvisionsTrial() {
	founder := s.seedUser(nil, types.RoleMember)

	resp, err := s.service.CreateTenant(s.GetContext(), founder.ID, dto.CreateTenantRequest{
		Name:         "Acme Corp",
		ContactEmail: "hello@acme.test",
	})
	s.NoError(err)
	s.Equal("Acme Corp", resp.Name)

	// a fresh tenant starts on a free-plan trial
	s.NotNil(resp.Subscription)
	s.Equal(types.PlanFree, resp.Subscription.Plan)
	s.Equal(types.SubscriptionStatusTrial, resp.Subscription.SubscriptionStatus)
	s.NotNil(resp.Subscription.TrialEndsAt)

	// the founder becomes the owner
	updated, err := s.params.UserRepo.Get(s.GetContext(), founder.ID)
	s.NoError(err)
	s.NotNil(updated.TenantID)
	s.Equal(resp.ID, *updated.TenantID)
	s.Equal(types.RoleOwner, updated.Role)
}

func (s *TenantServiceSuite) TestCreateTenantRejectsAlreadyOnboardedUser() {
	existing := "tenant_existing"
	u := s.seedUser(&existing, types.RoleOwner)

	_, err := s.service.CreateTenant(s.GetContext(), u.ID, dto.CreateTenantRequest{
		Name:         "Second Co",
		ContactEmail: "hello@second.test",
	})
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *TenantServiceSuite) TestOnboardUser() {
	founder := s.seedUser(nil, types.RoleMember)
	created, err := s.service.CreateTenant(s.GetContext(), founder.ID, dto.CreateTenantRequest{
		Name:         "Acme Corp",
		ContactEmail: "hello@acme.test",
	})
	s.NoError(err)

	newcomer := s.seedUser(nil, types.RoleMember)
	ownerScope := types.NewTenantScope(created.ID, types.RoleOwner)

	s.NoError(s.service.OnboardUser(s.GetContext(), ownerScope, newcomer.ID, types.RoleMember))

	onboarded, err := s.params.UserRepo.Get(s.GetContext(), newcomer.ID)
	s.NoError(err)
	s.NotNil(onboarded.TenantID)
	s.Equal(created.ID, *onboarded.TenantID)
}

func (s *TenantServiceSuite) TestOnboardUserRequiresOwner() {
	newcomer := s.seedUser(nil, types.RoleMember)
	memberScope := testutil.MemberScope()

	err := s.service.OnboardUser(s.GetContext(), memberScope, newcomer.ID, types.RoleMember)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *TenantServiceSuite) TestResolveScope() {
	founder := s.seedUser(nil, types.RoleMember)
	created, err := s.service.CreateTenant(s.GetContext(), founder.ID, dto.CreateTenantRequest{
		Name:         "Acme Corp",
		ContactEmail: "hello@acme.test",
	})
	s.NoError(err)

	scope, err := s.contextResolver.Resolve(s.GetContext(), founder.ID)
	s.NoError(err)
	s.Equal(created.ID, scope.TenantID)
	s.Equal(types.RoleOwner, scope.Role)
	s.False(scope.IsSystem())
}

func (s *TenantServiceSuite) TestResolveUserWithoutTenant() {
	loner := s.seedUser(nil, types.RoleMember)

	_, err := s.contextResolver.Resolve(s.GetContext(), loner.ID)
	s.Error(err)
	s.ErrorIs(err, ierr.ErrNoTenant)
}

func (s *TenantServiceSuite) TestResolveDeletedTenant() {
	founder := s.seedUser(nil, types.RoleMember)
	created, err := s.service.CreateTenant(s.GetContext(), founder.ID, dto.CreateTenantRequest{
		Name:         "Acme Corp",
		ContactEmail: "hello@acme.test",
	})
	s.NoError(err)

	t, err := s.params.TenantRepo.Get(s.GetContext(), created.ID)
	s.NoError(err)
	t.Status = types.StatusDeleted
	s.NoError(s.params.TenantRepo.Update(s.GetContext(), t))

	_, err = s.contextResolver.Resolve(s.GetContext(), founder.ID)
	s.Error(err)
	s.ErrorIs(err, ierr.ErrInvalidTenant)
}

func (s *TenantServiceSuite) TestResolveUnknownUser() {
	_, err := s.contextResolver.Resolve(s.GetContext(), "user_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

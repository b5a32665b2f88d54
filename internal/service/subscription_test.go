package service

import (
	"testing"
	"time"

	"github.com/invobase/invobase/internal/api/dto"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/testutil"
	"github.com/invobase/invobase/internal/types"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
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
	s.service = NewSubscriptionService(s.params)
}

func (s *SubscriptionServiceSuite) TestCreateTrialSubscription() {
	scope := testutil.DefaultScope()

	resp, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanFree,
		Status: types.SubscriptionStatusTrial,
	})
	s.NoError(err)
	s.Equal(types.PlanFree, resp.Plan)
	s.Equal(types.SubscriptionStatusTrial, resp.SubscriptionStatus)
	s.NotNil(resp.TrialEndsAt)

	expected := time.Now().UTC().AddDate(0, 0, types.TrialPeriodDays)
	s.WithinDuration(expected, *resp.TrialEndsAt, time.Minute)
	s.True(resp.OnTrial())
	s.True(resp.Usable())
}

func (s *SubscriptionServiceSuite) TestCreateReplacesActiveSubscription() {
	scope := testutil.DefaultScope()

	first, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanFree,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)

	second, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)
	s.NotEqual(first.ID, second.ID)

	// the replaced subscription is canceled immediately, not grace-period
	old, err := s.params.SubscriptionRepo.Get(s.GetContext(), scope, first.ID)
	s.NoError(err)
	s.True(old.IsCanceled())
	s.NotNil(old.EndsAt)
	s.WithinDuration(time.Now().UTC(), *old.EndsAt, time.Minute)
}

func (s *SubscriptionServiceSuite) TestCreateRejectsInvalidInitialStatus() {
	scope := testutil.DefaultScope()

	_, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusCanceled,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestChangePlanForcesActiveAndEndsTrial() {
	scope := testutil.DefaultScope()

	_, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanFree,
		Status: types.SubscriptionStatusTrial,
	})
	s.NoError(err)

	resp, err := s.service.ChangePlan(s.GetContext(), scope, types.PlanPro)
	s.NoError(err)
	s.Equal(types.PlanPro, resp.Plan)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Nil(resp.TrialEndsAt)
}

func (s *SubscriptionServiceSuite) TestCancelWithGracePeriod() {
	scope := testutil.DefaultScope()

	_, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)

	resp, err := s.service.CancelSubscription(s.GetContext(), scope, false)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, resp.SubscriptionStatus)
	s.NotNil(resp.EndsAt)

	expected := time.Now().UTC().AddDate(0, 0, types.GracePeriodDays)
	s.WithinDuration(expected, *resp.EndsAt, time.Minute)

	// plan access survives until the grace period lapses
	s.True(resp.Usable())
}

func (s *SubscriptionServiceSuite) TestCancelImmediately() {
	scope := testutil.DefaultScope()

	_, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)

	resp, err := s.service.CancelSubscription(s.GetContext(), scope, true)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, resp.SubscriptionStatus)
	s.NotNil(resp.EndsAt)
	s.WithinDuration(time.Now().UTC(), *resp.EndsAt, time.Minute)
	s.False(resp.Usable())
}

func (s *SubscriptionServiceSuite) TestResumeCanceledSubscription() {
	scope := testutil.DefaultScope()

	_, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)
	_, err = s.service.CancelSubscription(s.GetContext(), scope, false)
	s.NoError(err)

	resp, err := s.service.ResumeSubscription(s.GetContext(), scope)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Nil(resp.EndsAt)
}

func (s *SubscriptionServiceSuite) TestResumeRequiresCanceledState() {
	scope := testutil.DefaultScope()

	_, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)

	_, err = s.service.ResumeSubscription(s.GetContext(), scope)
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *SubscriptionServiceSuite) TestExpireOverdueSweep() {
	scope := testutil.DefaultScope()

	created, err := s.service.CreateSubscription(s.GetContext(), scope, dto.CreateSubscriptionRequest{
		Plan:   types.PlanPro,
		Status: types.SubscriptionStatusActive,
	})
	s.NoError(err)

	// cancel with the grace period already in the past
	sub, err := s.params.SubscriptionRepo.Get(s.GetContext(), scope, created.ID)
	s.NoError(err)
	endsAt := time.Now().UTC().AddDate(0, 0, -1)
	sub.SubscriptionStatus = types.SubscriptionStatusCanceled
	sub.EndsAt = &endsAt
	s.NoError(s.params.SubscriptionRepo.Update(s.GetContext(), scope, sub))

	expired, err := s.service.ExpireOverdue(s.GetContext(), types.SystemScope())
	s.NoError(err)
	s.Equal(1, expired)

	after, err := s.params.SubscriptionRepo.Get(s.GetContext(), scope, created.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, after.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestExpireOverdueRequiresSystemScope() {
	_, err := s.service.ExpireOverdue(s.GetContext(), testutil.DefaultScope())
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestGetSubscriptionNoneExists() {
	_, err := s.service.GetSubscription(s.GetContext(), testutil.DefaultScope())
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

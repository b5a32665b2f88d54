package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/invobase/invobase/internal/api/dto"
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/invobase/invobase/internal/domain/subscription"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/testutil"
	"github.com/invobase/invobase/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
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
	s.service = NewInvoiceService(s.params)

	s.seedSubscription(testutil.DefaultScope(), types.PlanPro, types.SubscriptionStatusActive)
}

func (s *InvoiceServiceSuite) seedSubscription(scope types.TenantScope, plan types.PlanType, status types.SubscriptionStatus) {
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		Plan:               plan,
		SubscriptionStatus: status,
		BaseModel:          types.GetDefaultBaseModel(scope),
	}
	if status == types.SubscriptionStatusTrial {
		trialEnd := time.Now().UTC().AddDate(0, 0, types.TrialPeriodDays)
		sub.TrialEndsAt = &trialEnd
	}
	s.NoError(s.params.SubscriptionRepo.Create(s.GetContext(), scope, sub))
}

func (s *InvoiceServiceSuite) replaceSubscription(scope types.TenantScope, plan types.PlanType) {
	s.GetStores().SubscriptionRepo.(*testutil.InMemorySubscriptionStore).Clear()
	s.seedSubscription(scope, plan, types.SubscriptionStatusActive)
}

func (s *InvoiceServiceSuite) createRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.test",
		Amount:      decimal.NewFromFloat(150.50),
		DueDate:     time.Now().UTC().AddDate(0, 1, 0),
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	scope := testutil.DefaultScope()

	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)
	s.NotNil(resp)

	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.Equal(testutil.DefaultTenantID, resp.TenantID)
	s.True(resp.Amount.Equal(decimal.NewFromFloat(150.50)))

	year := time.Now().UTC().Year()
	s.Equal(fmt.Sprintf("INV-%d0001", year), resp.InvoiceNumber)

	events := s.GetPublisher().EventsByName(types.EventInvoiceCreated)
	s.Len(events, 1)
	s.Equal(testutil.DefaultTenantID, events[0].TenantID)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceSequentialNumbers() {
	scope := testutil.DefaultScope()
	year := time.Now().UTC().Year()

	for i := 1; i <= 3; i++ {
		resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
		s.NoError(err)
		s.Equal(fmt.Sprintf("INV-%d%04d", year, i), resp.InvoiceNumber)
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoiceConcurrentNumbersAreDistinct() {
	scope := testutil.DefaultScope()

	const n = 10
	var wg sync.WaitGroup
	numbers := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
			if err == nil {
				numbers <- resp.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		s.False(seen[number], "invoice number %s assigned twice", number)
		seen[number] = true
	}
	s.Len(seen, n)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceProvidedNumber() {
	scope := testutil.DefaultScope()

	req := s.createRequest()
	req.InvoiceNumber = lo.ToPtr("CUSTOM-001")

	resp, err := s.service.CreateInvoice(s.GetContext(), scope, req)
	s.NoError(err)
	s.Equal("CUSTOM-001", resp.InvoiceNumber)

	// the same number again is rejected
	_, err = s.service.CreateInvoice(s.GetContext(), scope, req)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// custom numbers do not disturb the generated sequence
	generated, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)
	year := time.Now().UTC().Year()
	s.Equal(fmt.Sprintf("INV-%d0001", year), generated.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceQuotaFreePlan() {
	scope := testutil.DefaultScope()
	s.replaceSubscription(scope, types.PlanFree)

	for i := 0; i < 10; i++ {
		_, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
		s.NoError(err)
	}

	_, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.Error(err)
	s.True(ierr.IsQuotaExceeded(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceQuotaFreesUpAfterDelete() {
	scope := testutil.DefaultScope()
	s.replaceSubscription(scope, types.PlanFree)

	var lastID string
	for i := 0; i < 10; i++ {
		resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
		s.NoError(err)
		lastID = resp.ID
	}

	s.NoError(s.service.DeleteInvoice(s.GetContext(), scope, lastID))

	_, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWithoutSubscription() {
	scope := testutil.OtherScope()

	_, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.Error(err)
	s.True(ierr.IsQuotaExceeded(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	scope := testutil.DefaultScope()

	req := s.createRequest()
	req.Amount = decimal.NewFromFloat(-5)
	_, err := s.service.CreateInvoice(s.GetContext(), scope, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.createRequest()
	req.Amount = decimal.RequireFromString("10.999")
	_, err = s.service.CreateInvoice(s.GetContext(), scope, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.createRequest()
	req.ClientName = ""
	_, err = s.service.CreateInvoice(s.GetContext(), scope, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGetInvoiceCrossTenantIsNotFound() {
	resp, err := s.service.CreateInvoice(s.GetContext(), testutil.DefaultScope(), s.createRequest())
	s.NoError(err)

	_, err = s.service.GetInvoice(s.GetContext(), testutil.OtherScope(), resp.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestEmptyScopeIsRejectedEverywhere() {
	empty := types.TenantScope{}

	_, err := s.service.CreateInvoice(s.GetContext(), empty, s.createRequest())
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetInvoice(s.GetContext(), empty, "inv_missing")
	s.True(ierr.IsValidation(err))

	_, err = s.service.ListInvoices(s.GetContext(), empty, &types.InvoiceFilter{})
	s.True(ierr.IsValidation(err))

	_, err = s.service.UpdateInvoice(s.GetContext(), empty, "inv_missing", dto.UpdateInvoiceRequest{})
	s.True(ierr.IsValidation(err))

	err = s.service.DeleteInvoice(s.GetContext(), types.TenantScope{Role: types.RoleOwner}, "inv_missing")
	s.True(ierr.IsValidation(err))

	_, err = s.service.MarkInvoiceSent(s.GetContext(), empty, "inv_missing")
	s.True(ierr.IsValidation(err))

	_, err = s.service.MarkInvoicePaid(s.GetContext(), empty, "inv_missing")
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateRejectsCrossTenantWrite() {
	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: "INV-20269999",
		ClientName:    "Acme Corp",
		Amount:        decimal.NewFromFloat(150.50),
		InvoiceStatus: types.InvoiceStatusDraft,
		DueDate:       time.Now().UTC().AddDate(0, 1, 0),
		BaseModel:     types.GetDefaultBaseModel(testutil.OtherScope()),
	}

	err := s.params.InvoiceRepo.Create(s.GetContext(), testutil.DefaultScope(), inv)
	s.Error(err)
	s.True(ierr.IsTenantMismatch(err))

	// the rejected write must leave no trace in either tenant
	_, err = s.params.InvoiceRepo.Get(s.GetContext(), testutil.DefaultScope(), inv.ID)
	s.True(ierr.IsNotFound(err))
	_, err = s.params.InvoiceRepo.Get(s.GetContext(), testutil.OtherScope(), inv.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestLifecycleDraftSentPaid() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)
	s.True(resp.IsDraft())

	sent, err := s.service.MarkInvoiceSent(s.GetContext(), scope, resp.ID)
	s.NoError(err)
	s.True(sent.IsSent())

	paid, err := s.service.MarkInvoicePaid(s.GetContext(), scope, resp.ID)
	s.NoError(err)
	s.True(paid.IsPaid())
	s.NotNil(paid.PaidAt)

	events := s.GetPublisher().EventsByName(types.EventInvoicePaid)
	s.Len(events, 1)
}

func (s *InvoiceServiceSuite) TestMarkPaidFromDraft() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)

	paid, err := s.service.MarkInvoicePaid(s.GetContext(), scope, resp.ID)
	s.NoError(err)
	s.True(paid.IsPaid())
}

func (s *InvoiceServiceSuite) TestMarkPaidTwiceConflicts() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)

	_, err = s.service.MarkInvoicePaid(s.GetContext(), scope, resp.ID)
	s.NoError(err)

	_, err = s.service.MarkInvoicePaid(s.GetContext(), scope, resp.ID)
	s.Error(err)
	s.True(ierr.IsStateConflict(err))

	// exactly one paid event despite the second attempt
	s.Len(s.GetPublisher().EventsByName(types.EventInvoicePaid), 1)
}

func (s *InvoiceServiceSuite) TestMarkPaidConcurrentOnlyOneWins() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.MarkInvoicePaid(s.GetContext(), scope, resp.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsStateConflict(err))
		}
	}
	s.Equal(1, succeeded)
	s.Len(s.GetPublisher().EventsByName(types.EventInvoicePaid), 1)
}

func (s *InvoiceServiceSuite) TestMarkSentIsIdempotent() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)

	first, err := s.service.MarkInvoiceSent(s.GetContext(), scope, resp.ID)
	s.NoError(err)
	s.True(first.IsSent())

	second, err := s.service.MarkInvoiceSent(s.GetContext(), scope, resp.ID)
	s.NoError(err)
	s.True(second.IsSent())
}

func (s *InvoiceServiceSuite) TestPaidInvoiceIsImmutable() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)

	_, err = s.service.MarkInvoicePaid(s.GetContext(), scope, resp.ID)
	s.NoError(err)

	_, err = s.service.UpdateInvoice(s.GetContext(), scope, resp.ID, dto.UpdateInvoiceRequest{
		Notes: lo.ToPtr("late fee waived"),
	})
	s.Error(err)
	s.True(ierr.IsStateConflict(err))

	err = s.service.DeleteInvoice(s.GetContext(), scope, resp.ID)
	s.Error(err)
	s.True(ierr.IsStateConflict(err))

	_, err = s.service.MarkInvoiceSent(s.GetContext(), scope, resp.ID)
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *InvoiceServiceSuite) TestUpdateInvoice() {
	scope := testutil.DefaultScope()
	resp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)

	updated, err := s.service.UpdateInvoice(s.GetContext(), scope, resp.ID, dto.UpdateInvoiceRequest{
		ClientName: lo.ToPtr("Acme Holdings"),
		Amount:     lo.ToPtr(decimal.NewFromInt(200)),
	})
	s.NoError(err)
	s.Equal("Acme Holdings", updated.ClientName)
	s.True(updated.Amount.Equal(decimal.NewFromInt(200)))
	// untouched fields survive
	s.Equal("billing@acme.test", updated.ClientEmail)
}

func (s *InvoiceServiceSuite) TestDeleteRequiresOwner() {
	owner := testutil.DefaultScope()
	member := testutil.MemberScope()

	resp, err := s.service.CreateInvoice(s.GetContext(), owner, s.createRequest())
	s.NoError(err)

	err = s.service.DeleteInvoice(s.GetContext(), member, resp.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	s.NoError(s.service.DeleteInvoice(s.GetContext(), owner, resp.ID))

	_, err = s.service.GetInvoice(s.GetContext(), owner, resp.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesFiltering() {
	scope := testutil.DefaultScope()

	for i := 0; i < 3; i++ {
		_, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
		s.NoError(err)
	}
	sentResp, err := s.service.CreateInvoice(s.GetContext(), scope, s.createRequest())
	s.NoError(err)
	_, err = s.service.MarkInvoiceSent(s.GetContext(), scope, sentResp.ID)
	s.NoError(err)

	// another tenant's invoices never appear
	s.seedSubscription(testutil.OtherScope(), types.PlanPro, types.SubscriptionStatusActive)
	_, err = s.service.CreateInvoice(s.GetContext(), testutil.OtherScope(), s.createRequest())
	s.NoError(err)

	all, err := s.service.ListInvoices(s.GetContext(), scope, nil)
	s.NoError(err)
	s.Equal(4, all.Total)
	s.Len(all.Items, 4)

	sent, err := s.service.ListInvoices(s.GetContext(), scope, &types.InvoiceFilter{
		Status: lo.ToPtr(types.InvoiceStatusSent),
	})
	s.NoError(err)
	s.Equal(1, sent.Total)

	paged, err := s.service.ListInvoices(s.GetContext(), scope, &types.InvoiceFilter{
		Limit:  2,
		Offset: 2,
	})
	s.NoError(err)
	s.Equal(4, paged.Total)
	s.Len(paged.Items, 2)
	s.Equal(2, paged.Limit)
	s.Equal(2, paged.Offset)
}

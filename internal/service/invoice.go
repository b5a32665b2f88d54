package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invobase/invobase/internal/api/dto"
	"github.com/invobase/invobase/internal/domain/invoice"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// InvoiceService owns the invoice lifecycle: creation with quota and
// numbering, draft -> sent -> paid transitions, edits and soft deletes.
// Every mutation runs inside a single transaction and is serialized per
// tenant; the stats cache is invalidated and events are published only
// after the transaction commits.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, scope types.TenantScope, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, scope types.TenantScope, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateInvoice(ctx context.Context, scope types.TenantScope, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, scope types.TenantScope, id string) error
	MarkInvoiceSent(ctx context.Context, scope types.TenantScope, id string) (*dto.InvoiceResponse, error)
	MarkInvoicePaid(ctx context.Context, scope types.TenantScope, id string) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	entitlements EntitlementService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		entitlements:  NewEntitlementService(params),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, scope types.TenantScope, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Serialize per tenant: the quota check, number derivation and write
	// must not interleave with another create for the same tenant.
	unlock := s.TenantLocks.Lock(scope.TenantID)
	defer unlock()

	var resp *dto.InvoiceResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		canCreate, err := s.entitlements.CanCreateInvoice(ctx, scope)
		if err != nil {
			return err
		}
		if !canCreate {
			return ierr.NewError("invoice quota reached").
				WithHint("Upgrade the plan to create more invoices").
				Mark(ierr.ErrQuotaExceeded)
		}

		inv := req.ToInvoice(scope)

		if req.InvoiceNumber != nil {
			exists, err := s.InvoiceRepo.ExistsByNumber(ctx, scope, *req.InvoiceNumber)
			if err != nil {
				return err
			}
			if exists {
				return ierr.NewError("invoice number already in use").
					WithHintf("Invoice number %s already exists", *req.InvoiceNumber).
					Mark(ierr.ErrAlreadyExists)
			}
			inv.InvoiceNumber = *req.InvoiceNumber
		} else {
			year := time.Now().UTC().Year()
			seq, err := s.InvoiceRepo.NextSequence(ctx, scope, year)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = invoice.FormatNumber(year, seq)
		}

		if err := inv.Validate(); err != nil {
			return err
		}

		if err := s.InvoiceRepo.Create(ctx, scope, inv); err != nil {
			return err
		}

		resp = dto.NewInvoiceResponse(inv)
		return nil
	})

	if err != nil {
		s.Logger.Errorw("failed to create invoice",
			"error", err,
			"tenant_id", scope.TenantID,
		)
		return nil, err
	}

	// Cache invalidation and event emission happen-after the commit;
	// neither can fail the already-committed create.
	s.entitlements.InvalidateStats(ctx, scope.TenantID)
	s.publishInvoiceEvent(ctx, scope, types.EventInvoiceCreated, resp.Invoice)

	return resp, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, scope types.TenantScope, id string) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	invoices, err := s.InvoiceRepo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = dto.NewInvoiceResponse(inv)
	}

	return &dto.ListInvoicesResponse{
		Items:  items,
		Total:  count,
		Limit:  filter.GetLimit(),
		Offset: filter.GetOffset(),
	}, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, scope types.TenantScope, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := s.TenantLocks.Lock(scope.TenantID)
	defer unlock()

	var resp *dto.InvoiceResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, scope, id)
		if err != nil {
			return err
		}

		if inv.IsPaid() {
			return ierr.NewError("paid invoices are immutable").
				WithHintf("Invoice %s has been paid and can no longer be edited", inv.InvoiceNumber).
				Mark(ierr.ErrStateConflict)
		}

		req.Apply(inv)
		inv.UpdatedAt = time.Now().UTC()

		if err := inv.Validate(); err != nil {
			return err
		}

		if err := s.InvoiceRepo.Update(ctx, scope, inv); err != nil {
			return err
		}

		resp = dto.NewInvoiceResponse(inv)
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.entitlements.InvalidateStats(ctx, scope.TenantID)
	return resp, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, scope types.TenantScope, id string) error {
	if err := scope.Validate(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if scope.Role != types.RoleOwner {
		return ierr.NewError("only owners may delete invoices").
			WithHint("Ask a company owner to delete this invoice").
			Mark(ierr.ErrPermissionDenied)
	}

	unlock := s.TenantLocks.Lock(scope.TenantID)
	defer unlock()

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, scope, id)
		if err != nil {
			return err
		}

		if inv.IsPaid() {
			return ierr.NewError("paid invoices cannot be deleted").
				WithHintf("Invoice %s has been paid", inv.InvoiceNumber).
				Mark(ierr.ErrStateConflict)
		}

		return s.InvoiceRepo.Delete(ctx, scope, id)
	})

	if err != nil {
		return err
	}

	s.entitlements.InvalidateStats(ctx, scope.TenantID)
	return nil
}

func (s *invoiceService) MarkInvoiceSent(ctx context.Context, scope types.TenantScope, id string) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	unlock := s.TenantLocks.Lock(scope.TenantID)
	defer unlock()

	var resp *dto.InvoiceResponse
	var changed bool

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, scope, id)
		if err != nil {
			return err
		}

		if inv.IsPaid() {
			return ierr.NewError("paid invoices cannot be re-sent").
				WithHintf("Invoice %s has been paid", inv.InvoiceNumber).
				Mark(ierr.ErrStateConflict)
		}

		// sent -> sent is an idempotent no-op
		if !inv.IsSent() {
			inv.InvoiceStatus = types.InvoiceStatusSent
			inv.UpdatedAt = time.Now().UTC()
			if err := s.InvoiceRepo.Update(ctx, scope, inv); err != nil {
				return err
			}
			changed = true
		}

		resp = dto.NewInvoiceResponse(inv)
		return nil
	})

	if err != nil {
		return nil, err
	}

	if changed {
		s.entitlements.InvalidateStats(ctx, scope.TenantID)
	}
	return resp, nil
}

func (s *invoiceService) MarkInvoicePaid(ctx context.Context, scope types.TenantScope, id string) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	unlock := s.TenantLocks.Lock(scope.TenantID)
	defer unlock()

	var resp *dto.InvoiceResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, scope, id)
		if err != nil {
			return err
		}

		if inv.IsPaid() {
			return ierr.NewError("invoice already paid").
				WithHintf("Invoice %s was paid at %s", inv.InvoiceNumber, inv.PaidAt).
				Mark(ierr.ErrStateConflict)
		}

		now := time.Now().UTC()
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaidAt = &now
		inv.UpdatedAt = now

		if err := s.InvoiceRepo.Update(ctx, scope, inv); err != nil {
			return err
		}

		resp = dto.NewInvoiceResponse(inv)
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.entitlements.InvalidateStats(ctx, scope.TenantID)
	s.publishInvoiceEvent(ctx, scope, types.EventInvoicePaid, resp.Invoice)

	return resp, nil
}

// publishInvoiceEvent hands an event to the async pipeline. Failures are
// logged and never propagated: delivery is decoupled from the committed
// mutation.
func (s *invoiceService) publishInvoiceEvent(ctx context.Context, scope types.TenantScope, eventName string, inv *invoice.Invoice) {
	payload, err := json.Marshal(inv)
	if err != nil {
		s.Logger.Errorw("failed to marshal invoice event payload",
			"error", err,
			"event_name", eventName,
			"invoice_id", inv.ID,
		)
		return
	}

	event := &types.Event{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName: eventName,
		TenantID:  scope.TenantID,
		UserID:    types.GetUserID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish invoice event",
			"error", err,
			"event_name", eventName,
			"invoice_id", inv.ID,
			"tenant_id", scope.TenantID,
		)
	}
}

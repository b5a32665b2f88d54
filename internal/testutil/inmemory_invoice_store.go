package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/invobase/invobase/internal/domain/invoice"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository with the same scoping
// semantics as the postgres repository: tenant stamping on create, tenant
// filtering on every read, soft deletes.
type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	if inv.PaidAt != nil {
		paidAt := *inv.PaidAt
		out.PaidAt = &paidAt
	}
	return &out
}

// visible reports whether the scope may see the invoice at all. A live row
// owned by another tenant is treated exactly like a missing row.
func visible(scope types.TenantScope, inv *invoice.Invoice) bool {
	if inv.Status == types.StatusDeleted {
		return false
	}
	return scope.IsSystem() || inv.TenantID == scope.TenantID
}

func notFound(id string) error {
	return ierr.NewError("invoice not found").
		WithHintf("Invoice %s does not exist", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, scope types.TenantScope, inv *invoice.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice cannot be nil")
	}
	if err := scope.Validate(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if inv.TenantID != "" && inv.TenantID != scope.TenantID {
		return ierr.NewError("invoice tenant does not match scope").
			WithHint("An invoice cannot be created under another tenant").
			Mark(ierr.ErrTenantMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			WithHintf("Invoice %s already exists", inv.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	for _, existing := range s.invoices {
		if existing.TenantID == scope.TenantID &&
			existing.Status != types.StatusDeleted &&
			existing.InvoiceNumber == inv.InvoiceNumber {
			return ierr.NewError("invoice number already in use").
				WithHintf("Invoice number %s is already in use", inv.InvoiceNumber).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	stored := copyInvoice(inv)
	stored.TenantID = scope.TenantID
	s.invoices[inv.ID] = stored
	inv.TenantID = scope.TenantID
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, scope types.TenantScope, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.invoices[id]
	if !exists || !visible(scope, inv) {
		return nil, notFound(id)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, scope types.TenantScope, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.invoices[inv.ID]
	if !exists || !visible(scope, existing) {
		return notFound(inv.ID)
	}

	stored := copyInvoice(inv)
	stored.TenantID = existing.TenantID
	s.invoices[inv.ID] = stored
	return nil
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, scope types.TenantScope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.invoices[id]
	if !exists || !visible(scope, existing) {
		return notFound(id)
	}

	existing.Status = types.StatusDeleted
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if visible(scope, inv) && matchesFilter(inv, filter) {
			matched = append(matched, copyInvoice(inv))
		}
	}

	sortByCreatedAtDesc(matched)

	offset := filter.GetOffset()
	if offset >= len(matched) {
		return []*invoice.Invoice{}, nil
	}
	end := offset + filter.GetLimit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, inv := range s.invoices {
		if visible(scope, inv) && matchesFilter(inv, filter) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryInvoiceStore) ExistsByNumber(ctx context.Context, scope types.TenantScope, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.TenantID == scope.TenantID &&
			inv.Status != types.StatusDeleted &&
			inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryInvoiceStore) NextSequence(ctx context.Context, scope types.TenantScope, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := 0
	for _, inv := range s.invoices {
		if inv.TenantID != scope.TenantID || inv.Status == types.StatusDeleted {
			continue
		}
		if seq, ok := invoice.SequenceFromNumber(inv.InvoiceNumber, year); ok && seq > highest {
			highest = seq
		}
	}
	return highest + 1, nil
}

func (s *InMemoryInvoiceStore) GetStats(ctx context.Context, scope types.TenantScope) (*invoice.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := invoice.NewStats()
	for _, inv := range s.invoices {
		if inv.TenantID != scope.TenantID || inv.Status == types.StatusDeleted {
			continue
		}

		stats.Total++
		stats.TotalAmount = stats.TotalAmount.Add(inv.Amount)

		switch inv.InvoiceStatus {
		case types.InvoiceStatusDraft:
			stats.Draft++
			stats.PendingAmount = stats.PendingAmount.Add(inv.Amount)
		case types.InvoiceStatusSent:
			stats.Sent++
			stats.PendingAmount = stats.PendingAmount.Add(inv.Amount)
		case types.InvoiceStatusPaid:
			stats.Paid++
			stats.PaidAmount = stats.PaidAmount.Add(inv.Amount)
		}
	}
	return stats, nil
}

// Clear removes all invoices from the store
func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*invoice.Invoice)
}

func matchesFilter(inv *invoice.Invoice, filter *types.InvoiceFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Status != nil && inv.InvoiceStatus != *filter.Status {
		return false
	}
	if filter.ClientName != "" &&
		!strings.Contains(strings.ToLower(inv.ClientName), strings.ToLower(filter.ClientName)) {
		return false
	}
	if filter.InvoiceNumber != "" &&
		!strings.Contains(strings.ToLower(inv.InvoiceNumber), strings.ToLower(filter.InvoiceNumber)) {
		return false
	}
	if filter.DueDateFrom != nil && inv.DueDate.Before(*filter.DueDateFrom) {
		return false
	}
	if filter.DueDateTo != nil && inv.DueDate.After(*filter.DueDateTo) {
		return false
	}
	return true
}

func sortByCreatedAtDesc(invoices []*invoice.Invoice) {
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
}

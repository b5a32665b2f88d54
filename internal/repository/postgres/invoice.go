package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/invobase/invobase/internal/domain/invoice"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
	"github.com/invobase/invobase/internal/types"
	"github.com/lib/pq"
)

type invoiceRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, invoice_number, client_name, client_email, client_address,
	amount, invoice_status, due_date, paid_at, notes,
	tenant_id, status, created_at, updated_at`

func (r *invoiceRepository) Create(ctx context.Context, scope types.TenantScope, inv *invoice.Invoice) error {
	if err := scope.Validate(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if inv.TenantID != "" && inv.TenantID != scope.TenantID {
		return ierr.NewError("invoice tenant does not match scope").
			WithHint("An invoice cannot be created under another tenant").
			Mark(ierr.ErrTenantMismatch)
	}
	inv.TenantID = scope.TenantID

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (:id, :invoice_number, :client_name, :client_email, :client_address,
			:amount, :invoice_status, :due_date, :paid_at, :notes,
			:tenant_id, :status, :created_at, :updated_at)`

	_, err := r.db.GetQuerier(ctx).NamedExec(query, inv)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Invoice number %s is already in use", inv.InvoiceNumber).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, scope types.TenantScope, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE id = $1 AND status != $2`
	args := []interface{}{id, types.StatusDeleted}
	if !scope.IsSystem() {
		query += ` AND tenant_id = $3`
		args = append(args, scope.TenantID)
	}

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("invoice not found").
				WithHintf("Invoice %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, scope types.TenantScope, inv *invoice.Invoice) error {
	query := `UPDATE invoices SET
			client_name = :client_name,
			client_email = :client_email,
			client_address = :client_address,
			amount = :amount,
			invoice_status = :invoice_status,
			due_date = :due_date,
			paid_at = :paid_at,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id AND tenant_id = :tenant_id AND status != 'deleted'`
	if scope.IsSystem() {
		query = strings.Replace(query, " AND tenant_id = :tenant_id", "", 1)
	}

	res, err := r.db.GetQuerier(ctx).NamedExec(query, inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "invoice", inv.ID)
}

func (r *invoiceRepository) Delete(ctx context.Context, scope types.TenantScope, id string) error {
	query := `UPDATE invoices SET status = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND status != $1`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.StatusDeleted, id, scope.TenantID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete invoice").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "invoice", id)
}

func (r *invoiceRepository) List(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	where, args := invoiceWhere(scope, filter)
	query := fmt.Sprintf(`SELECT `+invoiceColumns+` FROM invoices
		WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		where, filter.GetLimit(), filter.GetOffset())

	invoices := make([]*invoice.Invoice, 0)
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, scope types.TenantScope, filter *types.InvoiceFilter) (int, error) {
	where, args := invoiceWhere(scope, filter)
	query := `SELECT COUNT(*) FROM invoices WHERE ` + where

	var count int
	err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) ExistsByNumber(ctx context.Context, scope types.TenantScope, number string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM invoices
		WHERE tenant_id = $1 AND invoice_number = $2 AND status != $3
	)`

	var exists bool
	err := r.db.GetQuerier(ctx).GetContext(ctx, &exists, query, scope.TenantID, number, types.StatusDeleted)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check invoice number").
			Mark(ierr.ErrDatabase)
	}
	return exists, nil
}

func (r *invoiceRepository) NextSequence(ctx context.Context, scope types.TenantScope, year int) (int, error) {
	// Only numbers in the generated <prefix><year><nnnn> shape advance the
	// sequence; caller-supplied numbers in other shapes are ignored.
	query := `SELECT invoice_number FROM invoices
		WHERE tenant_id = $1 AND status != $2 AND invoice_number LIKE $3`

	var numbers []string
	prefix := invoice.YearPrefix(year) + "%"
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &numbers, query, scope.TenantID, types.StatusDeleted, prefix)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to derive invoice sequence").
			Mark(ierr.ErrDatabase)
	}

	highest := 0
	for _, number := range numbers {
		if seq, ok := invoice.SequenceFromNumber(number, year); ok && seq > highest {
			highest = seq
		}
	}
	return highest + 1, nil
}

func (r *invoiceRepository) GetStats(ctx context.Context, scope types.TenantScope) (*invoice.Stats, error) {
	query := `SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE invoice_status = 'draft') AS draft,
			COUNT(*) FILTER (WHERE invoice_status = 'sent') AS sent,
			COUNT(*) FILTER (WHERE invoice_status = 'paid') AS paid,
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(SUM(amount) FILTER (WHERE invoice_status = 'paid'), 0) AS paid_amount,
			COALESCE(SUM(amount) FILTER (WHERE invoice_status != 'paid'), 0) AS pending_amount
		FROM invoices
		WHERE tenant_id = $1 AND status != $2`

	var row struct {
		Total         int    `db:"total"`
		Draft         int    `db:"draft"`
		Sent          int    `db:"sent"`
		Paid          int    `db:"paid"`
		TotalAmount   string `db:"total_amount"`
		PaidAmount    string `db:"paid_amount"`
		PendingAmount string `db:"pending_amount"`
	}

	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, scope.TenantID, types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to aggregate invoice stats").
			Mark(ierr.ErrDatabase)
	}

	stats := invoice.NewStats()
	stats.Total = row.Total
	stats.Draft = row.Draft
	stats.Sent = row.Sent
	stats.Paid = row.Paid
	if stats.TotalAmount, err = parseAmount(row.TotalAmount); err != nil {
		return nil, err
	}
	if stats.PaidAmount, err = parseAmount(row.PaidAmount); err != nil {
		return nil, err
	}
	if stats.PendingAmount, err = parseAmount(row.PendingAmount); err != nil {
		return nil, err
	}
	return stats, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// invoiceWhere builds the shared WHERE clause for list and count so both
// always agree on which rows match.
func invoiceWhere(scope types.TenantScope, filter *types.InvoiceFilter) (string, []interface{}) {
	clauses := []string{"status != ?"}
	args := []interface{}{types.StatusDeleted}

	if !scope.IsSystem() {
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, scope.TenantID)
	}

	if filter != nil {
		if filter.Status != nil {
			clauses = append(clauses, "invoice_status = ?")
			args = append(args, *filter.Status)
		}
		if filter.ClientName != "" {
			clauses = append(clauses, "client_name ILIKE ?")
			args = append(args, "%"+filter.ClientName+"%")
		}
		if filter.InvoiceNumber != "" {
			clauses = append(clauses, "invoice_number ILIKE ?")
			args = append(args, "%"+filter.InvoiceNumber+"%")
		}
		if filter.DueDateFrom != nil {
			clauses = append(clauses, "due_date >= ?")
			args = append(args, *filter.DueDateFrom)
		}
		if filter.DueDateTo != nil {
			clauses = append(clauses, "due_date <= ?")
			args = append(args, *filter.DueDateTo)
		}
	}

	where := strings.Join(clauses, " AND ")
	// rebind ? placeholders to postgres-style $N
	for i := 1; strings.Contains(where, "?"); i++ {
		where = strings.Replace(where, "?", fmt.Sprintf("$%d", i), 1)
	}
	return where, args
}

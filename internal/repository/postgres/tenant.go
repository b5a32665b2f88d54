package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/invobase/invobase/internal/domain/tenant"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
)

type tenantRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewTenantRepository(db postgres.IClient, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{db: db, logger: logger}
}

const tenantColumns = `id, name, contact_email, contact_phone, address,
	status, created_at, updated_at`

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `INSERT INTO tenants (` + tenantColumns + `)
		VALUES (:id, :name, :contact_email, :contact_phone, :address,
			:status, :created_at, :updated_at)`

	_, err := r.db.GetQuerier(ctx).NamedExec(query, t)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create tenant").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	var t tenant.Tenant
	err := r.db.GetQuerier(ctx).GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("tenant not found").
				WithHintf("Tenant %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tenant").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *tenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	query := `UPDATE tenants SET
			name = :name,
			contact_email = :contact_email,
			contact_phone = :contact_phone,
			address = :address,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.GetQuerier(ctx).NamedExec(query, t)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tenant").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "tenant", t.ID)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/invobase/invobase/internal/domain/subscription"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
	"github.com/invobase/invobase/internal/types"
)

type subscriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

const subscriptionColumns = `id, plan, subscription_status, trial_ends_at, ends_at,
	tenant_id, status, created_at, updated_at`

func (r *subscriptionRepository) Create(ctx context.Context, scope types.TenantScope, sub *subscription.Subscription) error {
	if err := scope.Validate(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	if sub.TenantID != "" && sub.TenantID != scope.TenantID {
		return ierr.NewError("subscription tenant does not match scope").
			WithHint("A subscription cannot be created under another tenant").
			Mark(ierr.ErrTenantMismatch)
	}
	sub.TenantID = scope.TenantID

	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES (:id, :plan, :subscription_status, :trial_ends_at, :ends_at,
			:tenant_id, :status, :created_at, :updated_at)`

	_, err := r.db.GetQuerier(ctx).NamedExec(query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, scope types.TenantScope, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE id = $1 AND status != $2`
	args := []interface{}{id, types.StatusDeleted}
	if !scope.IsSystem() {
		query += ` AND tenant_id = $3`
		args = append(args, scope.TenantID)
	}

	var sub subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("Subscription %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByTenant(ctx context.Context, scope types.TenantScope) (*subscription.Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE tenant_id = $1 AND status != $2
		ORDER BY created_at DESC
		LIMIT 1`

	var sub subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, scope.TenantID, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("tenant has no subscription").
				WithHint("Start a subscription for this tenant first").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, scope types.TenantScope, sub *subscription.Subscription) error {
	query := `UPDATE subscriptions SET
			plan = :plan,
			subscription_status = :subscription_status,
			trial_ends_at = :trial_ends_at,
			ends_at = :ends_at,
			updated_at = :updated_at
		WHERE id = :id AND tenant_id = :tenant_id AND status != 'deleted'`
	if scope.IsSystem() {
		query = `UPDATE subscriptions SET
			plan = :plan,
			subscription_status = :subscription_status,
			trial_ends_at = :trial_ends_at,
			ends_at = :ends_at,
			updated_at = :updated_at
		WHERE id = :id AND status != 'deleted'`
	}

	res, err := r.db.GetQuerier(ctx).NamedExec(query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "subscription", sub.ID)
}

func (r *subscriptionRepository) ListEndedBefore(ctx context.Context, scope types.TenantScope, cutoff time.Time) ([]*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE subscription_status = $1 AND ends_at IS NOT NULL AND ends_at < $2 AND status != $3`
	args := []interface{}{types.SubscriptionStatusCanceled, cutoff, types.StatusDeleted}
	if !scope.IsSystem() {
		query += ` AND tenant_id = $4`
		args = append(args, scope.TenantID)
	}

	subs := make([]*subscription.Subscription, 0)
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &subs, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ended subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

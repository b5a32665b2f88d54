package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/invobase/invobase/internal/domain/user"
	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
)

type userRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewUserRepository(db postgres.IClient, logger *logger.Logger) user.Repository {
	return &userRepository{db: db, logger: logger}
}

const userColumns = `id, email, name, tenant_id, role,
	status, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :name, :tenant_id, :role,
			:status, :created_at, :updated_at)`

	_, err := r.db.GetQuerier(ctx).NamedExec(query, u)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Email %s is already registered", u.Email).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create user").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u user.User
	err := r.db.GetQuerier(ctx).GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("user not found").
				WithHintf("User %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get user").
			Mark(ierr.ErrDatabase)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	query := `UPDATE users SET
			email = :email,
			name = :name,
			tenant_id = :tenant_id,
			role = :role,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.GetQuerier(ctx).NamedExec(query, u)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "user", u.ID)
}

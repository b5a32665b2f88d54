package repository

import (
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/invobase/invobase/internal/domain/subscription"
	"github.com/invobase/invobase/internal/domain/tenant"
	"github.com/invobase/invobase/internal/domain/user"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
	postgresRepo "github.com/invobase/invobase/internal/repository/postgres"
)

func NewTenantRepository(db postgres.IClient, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewTenantRepository(db, logger)
}

func NewUserRepository(db postgres.IClient, logger *logger.Logger) user.Repository {
	return postgresRepo.NewUserRepository(db, logger)
}

func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

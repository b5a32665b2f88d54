package service

import (
	"github.com/invobase/invobase/internal/cache"
	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/invobase/invobase/internal/domain/subscription"
	"github.com/invobase/invobase/internal/domain/tenant"
	"github.com/invobase/invobase/internal/domain/user"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
	"github.com/invobase/invobase/internal/publisher"
)

// ServiceParams bundles the dependencies shared by all services.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	EventPublisher publisher.EventPublisher
	TenantLocks    *TenantLockManager

	TenantRepo       tenant.Repository
	UserRepo         user.Repository
	InvoiceRepo      invoice.Repository
	SubscriptionRepo subscription.Repository
}

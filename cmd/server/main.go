package main

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/invobase/invobase/internal/cache"
	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/invobase/invobase/internal/domain/subscription"
	"github.com/invobase/invobase/internal/domain/tenant"
	"github.com/invobase/invobase/internal/domain/user"
	"github.com/invobase/invobase/internal/email"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/notification"
	"github.com/invobase/invobase/internal/postgres"
	"github.com/invobase/invobase/internal/publisher"
	"github.com/invobase/invobase/internal/pubsub"
	"github.com/invobase/invobase/internal/pubsub/memory"
	pubsubRouter "github.com/invobase/invobase/internal/pubsub/router"
	"github.com/invobase/invobase/internal/repository"
	"github.com/invobase/invobase/internal/service"
	"github.com/invobase/invobase/internal/types"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			provideDB,
			func(db *postgres.DB) postgres.IClient { return db },

			// PubSub
			memory.NewPubSub,
			pubsubRouter.NewRouter,
			publisher.NewEventPublisher,

			// Email
			email.NewClient,
			func(c *email.Client) email.Sender { return c },

			// Repositories
			repository.NewTenantRepository,
			repository.NewUserRepository,
			repository.NewInvoiceRepository,
			repository.NewSubscriptionRepository,

			// Services
			service.NewTenantLockManager,
			provideServiceParams,
			service.NewTenantService,
			service.NewTenantContextService,
			service.NewInvoiceService,
			service.NewSubscriptionService,
			service.NewEntitlementService,

			// Notifications
			notification.NewHandler,
		),
		fx.Invoke(startMessageRouter),
		fx.Invoke(startExpirySweep),
	)
	app.Run()
}

// provideDB connects to postgres with retries so the service survives the
// database coming up after it in local compose setups.
func provideDB(cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	var db *postgres.DB

	operation := func() error {
		var err error
		db, err = postgres.NewDB(cfg, log)
		if err != nil {
			log.Warnw("postgres not ready, retrying", "error", err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 60 * time.Second

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return db, nil
}

func provideServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	c cache.Cache,
	eventPublisher publisher.EventPublisher,
	tenantLocks *service.TenantLockManager,
	tenantRepo tenant.Repository,
	userRepo user.Repository,
	invoiceRepo invoice.Repository,
	subscriptionRepo subscription.Repository,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               db,
		Cache:            c,
		EventPublisher:   eventPublisher,
		TenantLocks:      tenantLocks,
		TenantRepo:       tenantRepo,
		UserRepo:         userRepo,
		InvoiceRepo:      invoiceRepo,
		SubscriptionRepo: subscriptionRepo,
	}
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	handler *notification.Handler,
	cfg *config.Configuration,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	handler.Register(router, cfg, ps)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(context.Background()); err != nil {
					log.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return router.Close()
		},
	})
}

// startExpirySweep periodically expires canceled subscriptions whose grace
// period has lapsed.
func startExpirySweep(
	lc fx.Lifecycle,
	subscriptionService service.SubscriptionService,
	log *logger.Logger,
) {
	ticker := time.NewTicker(1 * time.Hour)
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						expired, err := subscriptionService.ExpireOverdue(context.Background(), types.SystemScope())
						if err != nil {
							log.Errorw("subscription expiry sweep failed", "error", err)
							continue
						}
						if expired > 0 {
							log.Infow("expired overdue subscriptions", "count", expired)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ticker.Stop()
			close(done)
			return nil
		},
	})
}

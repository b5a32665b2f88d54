package testutil

import (
	"context"
	"time"

	"github.com/invobase/invobase/internal/cache"
	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/invobase/invobase/internal/domain/subscription"
	"github.com/invobase/invobase/internal/domain/tenant"
	"github.com/invobase/invobase/internal/domain/user"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/postgres"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TenantRepo       tenant.Repository
	UserRepo         user.Repository
	InvoiceRepo      invoice.Repository
	SubscriptionRepo subscription.Repository
}

// BaseServiceTestSuite provides common functionality for all service test
// suites: in-memory stores, a pass-through transaction client, a recording
// event publisher and a real cache.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryEventPublisher
	db        postgres.IClient
	cache     cache.Cache
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		TenantRepo:       NewInMemoryTenantStore(),
		UserRepo:         NewInMemoryUserStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
	}
	s.publisher = NewInMemoryEventPublisher()
	s.db = NewMockPostgresClient(s.logger)
	s.cache = cache.NewInMemoryCache(s.config)
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.TenantRepo.(*InMemoryTenantStore).Clear()
	s.stores.UserRepo.(*InMemoryUserStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.publisher.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the recording event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetDB returns the pass-through transaction client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/logger"
)

// Router manages all message routing for the notification pipeline.
// Handlers get at-least-once delivery: a failed message is redelivered
// with backoff until the attempt budget is spent, then parked on the
// dead-letter topic and acked. Without the poison queue the final nack
// would put the message back on the persistent subscriber and restart
// the whole retry cycle, so a poison message would spin forever.
type Router struct {
	router *message.Router
	logger *logger.Logger
	config *config.NotificationConfig
}

// NewRouter creates a new message router
func NewRouter(cfg *config.Configuration, logger *logger.Logger) (*Router, error) {
	router, err := message.NewRouter(
		message.RouterConfig{},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(getDLQ(), cfg.Notification.Topic+"_dlq")
	if err != nil {
		return nil, err
	}

	// watermill counts MaxRetries on top of the first delivery, so the
	// budget covers total attempts including that first one.
	retries := cfg.Notification.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}

	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		logPermanentFailures(logger, cfg.Notification.MaxAttempts),
		middleware.Retry{
			MaxRetries:      retries,
			InitialInterval: cfg.Notification.InitialInterval,
			MaxInterval:     cfg.Notification.MaxInterval,
			Multiplier:      cfg.Notification.Multiplier,
			MaxElapsedTime:  cfg.Notification.MaxElapsedTime,
			Logger:          watermill.NewStdLogger(false, false),
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying notification delivery",
					"retry_number", retryNum,
					"max_attempts", cfg.Notification.MaxAttempts,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		config: &cfg.Notification,
	}, nil
}

// logPermanentFailures sits between the poison queue and the retry
// middleware: an error reaching it means every attempt failed, so it
// records the drop before the poison queue parks the message.
func logPermanentFailures(logger *logger.Logger, maxAttempts int) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msgs, err := h(msg)
			if err != nil {
				logger.Errorw("parking notification after exhausted attempts",
					"error", err,
					"max_attempts", maxAttempts,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
			}
			return msgs, err
		}
	}
}

// AddNoPublishHandler adds a handler that doesn't publish messages
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
) {
	r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err != nil {
				r.logger.Errorw("notification handler failed",
					"error", err,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
			}
			return err
		},
	)
}

// Run starts the router and blocks until the context is canceled.
func (r *Router) Run(ctx context.Context) error {
	r.logger.Infow("starting notification router")
	return r.router.Run(ctx)
}

// Running returns a channel closed once the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully shuts down the router
func (r *Router) Close() error {
	r.logger.Infow("closing notification router")
	return r.router.Close()
}

// getDLQ returns the in-process dead-letter sink for parked messages.
// Nothing consumes it; parking exists so poison messages are acked
// instead of redelivered.
func getDLQ() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			Persistent: false,
		},
		watermill.NewStdLogger(false, false),
	)
}

package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/pubsub"
	"github.com/invobase/invobase/internal/types"
)

// EventPublisher hands domain events to the async delivery pipeline.
// Publishing happens only after the triggering transaction has committed,
// and a publish failure is never surfaced to that operation.
type EventPublisher interface {
	Publish(ctx context.Context, event *types.Event) error
	Close() error
}

type eventPublisher struct {
	pubSub pubsub.PubSub
	config *config.NotificationConfig
	logger *logger.Logger
}

// NewEventPublisher creates a pubsub-backed event publisher
func NewEventPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		config: &cfg.Notification,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *types.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	messageID := event.ID
	if messageID == "" {
		messageID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT)
	}

	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("tenant_id", event.TenantID)
	msg.Metadata.Set("event_name", event.EventName)

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
			"tenant_id", event.TenantID,
		)
		return err
	}

	p.logger.Debugw("published event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"tenant_id", event.TenantID,
	)

	return nil
}

func (p *eventPublisher) Close() error {
	return p.pubSub.Close()
}

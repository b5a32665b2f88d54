package testutil

import (
	"context"
	"sync"

	"github.com/invobase/invobase/internal/types"
)

// InMemoryEventPublisher records published events so tests can assert on
// them without a running message router.
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*types.Event
}

// NewInMemoryEventPublisher creates a new in-memory event publisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		events: make([]*types.Event, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *types.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryEventPublisher) Events() []*types.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.Event, len(p.events))
	copy(out, p.events)
	return out
}

// EventsByName returns published events matching the given name.
func (p *InMemoryEventPublisher) EventsByName(name string) []*types.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.Event, 0)
	for _, event := range p.events {
		if event.EventName == name {
			out = append(out, event)
		}
	}
	return out
}

// Clear removes all recorded events.
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = p.events[:0]
}

package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// Bus is an in-process best-effort pub/sub for structural-change events.
// Publish fans out to every current subscriber without blocking: a
// subscriber whose buffer is full simply misses the event. There is no
// queuing or replay; services publish only after durable commit.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]chan Event
	logger *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]chan Event),
		logger: logger,
	}
}

// Subscribe registers a new listener and returns its id and channel. The
// caller must Unsubscribe when its transport closes.
func (b *Bus) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	b.logger.Debug("realtime subscriber added", "subscriber_id", id)
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		close(ch)
		b.logger.Debug("realtime subscriber removed", "subscriber_id", id)
	}
}

// Publish fans an event out to all current subscribers, dropping it for
// any subscriber that cannot keep up.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("realtime subscriber too slow, dropping event",
				"subscriber_id", id,
				"event_type", event.Type,
			)
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Package eventbus fans board events out to in-process subscribers. Delivery
// is best effort: it feeds live views and must not carry work that has to
// happen.
package eventbus

import (
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
)

type subscription struct {
	ch    chan *taskboardv1.Event
	types []taskboardv1.EventType // empty means every type
}

func (s *subscription) wants(t taskboardv1.EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

type Bus struct {
	mu   sync.RWMutex
	subs map[string]*subscription
	now  func() time.Time
}

func New() *Bus {
	return &Bus{
		subs: make(map[string]*subscription),
		now:  time.Now,
	}
}

// Subscribe registers a subscriber for the given event types, or for every
// type when none are given. Events of other types never occupy its buffer.
func (b *Bus) Subscribe(bufSize int, types ...taskboardv1.EventType) (string, <-chan *taskboardv1.Event) {
	id := ulid.Make().String()
	sub := &subscription{
		ch:    make(chan *taskboardv1.Event, bufSize),
		types: slices.Clone(types),
	}
	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()
	return id, sub.ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// Publish never blocks. A subscriber whose buffer is full misses the event.
func (b *Bus) Publish(event *taskboardv1.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}

func (b *Bus) PublishNew(eventType taskboardv1.EventType, resourceID, payload string, metadata map[string]string) {
	b.Publish(&taskboardv1.Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		Payload:    payload,
		Metadata:   metadata,
		CreatedAt:  b.now(),
	})
}

// Subscribers reports the number of open subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

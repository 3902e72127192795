// Package projection builds local views from observed events.
// Handles ordering and bounding; does not emit events.
package projection

import (
	"sync"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// Timeline keeps a bounded, in-memory view of the most recent broadcast
// messages. It is a diagnostics sink fed by the coordinator, not a
// source of truth: the message store remains authoritative.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	messages []domain.Message
}

func NewTimeline(capacity int) *Timeline {
	return &Timeline{capacity: capacity}
}

// Consume appends broadcast messages, evicting the oldest entry once
// the capacity is reached. Presence events are ignored.
func (t *Timeline) Consume(e event.DomainEvent) error {
	broadcast, ok := e.(event.MessageBroadcast)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, broadcast.Message)
	if t.capacity > 0 && len(t.messages) > t.capacity {
		t.messages = t.messages[len(t.messages)-t.capacity:]
	}
	return nil
}

// Messages returns a copy of the current view, oldest-first.
func (t *Timeline) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len reports the current number of retained messages.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

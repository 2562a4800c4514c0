// Package realtime fans out row changes to subscribers keyed by resource id
// (a room id or a daily question id).
package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

const subscriberBuffer = 16

type Event struct {
	Resource string          `json:"resource"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into an event for resource.
func NewEvent(resource, typ string, payload any) (Event, error) {
	ev := Event{Resource: resource, Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return ev, err
		}
		ev.Payload = raw
	}
	return ev, nil
}

// Publisher sends an event to every process that serves subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe returns a channel of events for resource and a function that
// unsubscribes and closes it.
func (h *Hub) Subscribe(resource string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[resource] == nil {
		h.subs[resource] = make(map[chan Event]struct{})
	}
	h.subs[resource][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[resource], ch)
			if len(h.subs[resource]) == 0 {
				delete(h.subs, resource)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Deliver hands ev to local subscribers without blocking. A subscriber whose
// buffer is full loses its oldest pending event.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.Resource] {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports how many subscribers resource has.
func (h *Hub) Subscribers(resource string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[resource])
}

// LocalPublisher delivers straight to an in-process hub.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Publish(ctx context.Context, ev Event) error {
	p.hub.Deliver(ev)
	return nil
}

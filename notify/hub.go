// Package notify fans post change events out to connected real-time clients.
// Delivery is best effort: there is no acknowledgement, no retry and no
// replay, and a client that cannot keep up loses events.
package notify

import (
	"errors"
	"sync"
)

// ErrNotStarted is the panic value of Broadcast on a hub that is not running.
var ErrNotStarted = errors.New("notify: hub used before Start or after Close")

const queueSize = 16

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type subscriber struct {
	events chan Event
}

type Hub struct {
	mu      sync.Mutex
	running bool
	subs    map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Start marks the hub ready. It must be called once before any Broadcast.
func (h *Hub) Start() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()
}

// Close disconnects every subscriber. Broadcast panics afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	for s := range h.subs {
		close(s.events)
		delete(h.subs, s)
	}
}

// Broadcast queues payload for every subscriber on channel. Subscribers whose
// queue is full miss the event.
func (h *Hub) Broadcast(channel string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		panic(ErrNotStarted)
	}
	ev := Event{Event: channel, Data: payload}
	for s := range h.subs {
		select {
		case s.events <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned channel is closed when
// the subscriber is cancelled or the hub closes.
func (h *Hub) Subscribe() (<-chan Event, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return nil, nil, ErrNotStarted
	}
	s := &subscriber{events: make(chan Event, queueSize)}
	h.subs[s] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[s]; ok {
			delete(h.subs, s)
			close(s.events)
		}
	}
	return s.events, cancel, nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

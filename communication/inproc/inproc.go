// Package inproc connects cluster endpoints living in one process through
// buffered channels.
package inproc

import (
	"connect4/communication"
	"context"
	"fmt"
	"sync"
)

const inboxSize = 256

// Hub routes messages between the endpoints registered with it.
type Hub struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

func NewHub() *Hub {
	return &Hub{endpoints: make(map[string]*Endpoint)}
}

// Endpoint registers a new endpoint named id.
func (h *Hub) Endpoint(id string) (*Endpoint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.endpoints[id]; ok {
		return nil, fmt.Errorf("endpoint %q already registered", id)
	}
	e := &Endpoint{
		hub:   h,
		id:    id,
		inbox: make(chan communication.Message, inboxSize),
		done:  make(chan struct{}),
	}
	h.endpoints[id] = e
	return e, nil
}

func (h *Hub) lookup(id string) (*Endpoint, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.endpoints[id]
	return e, ok
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.endpoints, id)
}

type Endpoint struct {
	hub   *Hub
	id    string
	inbox chan communication.Message
	done  chan struct{}
	once  sync.Once
}

func (e *Endpoint) ID() string {
	return e.id
}

// Send delivers a private copy of msg to the endpoint named to, blocking while
// its inbox is full.
func (e *Endpoint) Send(ctx context.Context, to string, msg communication.Message) error {
	select {
	case <-e.done:
		return communication.ErrClosed
	default:
	}
	dst, ok := e.hub.lookup(to)
	if !ok {
		return fmt.Errorf("unknown endpoint %q", to)
	}
	msg = msg.Clone()
	msg.From = e.id
	select {
	case dst.inbox <- msg:
		return nil
	case <-dst.done:
		return fmt.Errorf("endpoint %q: %w", to, communication.ErrClosed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Endpoint) Inbox() <-chan communication.Message {
	return e.inbox
}

// Close unregisters the endpoint. Its inbox is left open so pending receivers
// do not observe a spurious zero message.
func (e *Endpoint) Close() error {
	e.once.Do(func() {
		close(e.done)
		e.hub.remove(e.id)
	})
	return nil
}

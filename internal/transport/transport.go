// Package transport carries match-channel events between the client and the
// server. The engine only depends on the Transport interface; the websocket
// connection and the in-memory fake both satisfy it.
package transport

import (
	"sync"

	"github.com/emberdate/spark/internal/types"
)

// Handler receives one inbound event. Handlers for a given transport are
// invoked sequentially in delivery order.
type Handler func(types.Event)

// Transport sends events to the server and delivers pushed events to
// subscribed handlers. On returns an unsubscribe func; calling it more than
// once is harmless.
type Transport interface {
	Send(ev types.Event) error
	On(t types.EventType, h Handler) (off func())
	Close() error
}

// registry is the shared subscription table used by both implementations.
type registry struct {
	mu   sync.Mutex
	next int
	subs map[types.EventType]map[int]Handler
}

func newRegistry() *registry {
	return &registry{subs: make(map[types.EventType]map[int]Handler)}
}

func (r *registry) on(t types.EventType, h Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[t] == nil {
		r.subs[t] = make(map[int]Handler)
	}
	id := r.next
	r.next++
	r.subs[t][id] = h
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[t], id)
	}
}

// dispatch delivers the event to every handler subscribed to its type.
// Handlers are snapshotted under the lock and called outside it so a handler
// can subscribe or unsubscribe without deadlocking.
func (r *registry) dispatch(ev types.Event) {
	r.mu.Lock()
	handlers := make([]Handler, 0, len(r.subs[ev.Type]))
	ids := make([]int, 0, len(r.subs[ev.Type]))
	for id := range r.subs[ev.Type] {
		ids = append(ids, id)
	}
	// Stable order: subscription order.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		handlers = append(handlers, r.subs[ev.Type][id])
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

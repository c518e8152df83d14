package transport

import (
	"sync"

	"github.com/emberdate/spark/internal/types"
)

// Fake is an in-memory Transport. Engine tests and the offline demo mode use
// it: Sent records outbound traffic, Inject plays a server push into the
// subscribed handlers synchronously.
type Fake struct {
	reg *registry

	mu     sync.Mutex
	sent   []types.Event
	closed bool

	// OnSend, when set, observes every outbound event after it is recorded.
	// The offline demo uses it to script server echoes.
	OnSend func(types.Event)
}

// NewFake returns an empty fake transport.
func NewFake() *Fake {
	return &Fake{reg: newRegistry()}
}

func (f *Fake) Send(ev types.Event) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.sent = append(f.sent, ev)
	onSend := f.OnSend
	f.mu.Unlock()
	if onSend != nil {
		onSend(ev)
	}
	return nil
}

func (f *Fake) On(t types.EventType, h Handler) func() {
	return f.reg.on(t, h)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Inject delivers a pushed event to subscribers, as the read loop would.
func (f *Fake) Inject(ev types.Event) {
	f.reg.dispatch(ev)
}

// Sent returns a copy of all events sent so far.
func (f *Fake) Sent() []types.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Event, len(f.sent))
	copy(out, f.sent)
	return out
}

// SentOf returns the sent events of one type, in order.
func (f *Fake) SentOf(t types.EventType) []types.Event {
	var out []types.Event
	for _, ev := range f.Sent() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

package engine

import "github.com/emberdate/spark/internal/types"

// Inbound event reducer. Transport delivery is in-order per connection but
// the stream itself can be duplicated or causally reordered, so every
// handler here is idempotent: re-applying an event, or applying it late,
// converges to the same state. Malformed events (missing fields) reduce to
// no-ops rather than errors.

// handleRead applies a read-receipt batch to both message collections.
func (e *Engine) handleRead(ev types.Event) {
	if len(ev.MessageIDs) == 0 {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	changed := e.store.MarkRead(ev.MessageIDs) > 0
	e.mu.Unlock()

	if !changed {
		return
	}
	e.pulse.ReadReceipt()
	e.notify()
}

// handleMessage reconciles a confirmation echo against the pending list.
// Only echoes of our own sends matter here: partner messages reach the
// store through the authoritative conversation refresh.
//
// Correlation prefers the round-tripped client key; echoes without one fall
// back to the oldest pending message with the same sender and exact text.
// First-match only, so two identical pending texts never collapse into one.
func (e *Engine) handleMessage(ev types.Event) {
	if ev.SenderID == "" || ev.SenderID != e.cfg.UserID {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	var removed bool
	if ev.ClientKey != "" {
		removed = e.store.ReconcileFirst(func(m types.Message) bool {
			return m.ClientKey == ev.ClientKey
		})
	} else if ev.Content != "" {
		removed = e.store.ReconcileFirst(func(m types.Message) bool {
			return m.SenderID == ev.SenderID && m.Text == ev.Content
		})
	}
	e.mu.Unlock()

	if removed {
		e.log.Debugw("reconciled pending message", "client_key", ev.ClientKey)
		e.notify()
	}
}

// handleTyping maintains the partner-typing flag and its inactivity timer.
// Our own typing echoes are suppressed; repeated is_typing=true events just
// re-arm the same 10s timer.
func (e *Engine) handleTyping(ev types.Event) {
	if ev.UserID == "" || ev.UserID == e.cfg.UserID {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	changed := e.partnerTyping != ev.IsTyping
	e.partnerTyping = ev.IsTyping
	e.mu.Unlock()

	key := e.timerKey(timerPartnerTyping)
	if ev.IsTyping {
		e.sched.Schedule(key, partnerTypingTimeout, e.partnerTypingExpired)
	} else {
		e.sched.Cancel(key)
	}

	if changed {
		e.notify()
	}
}

func (e *Engine) partnerTypingExpired() {
	e.mu.Lock()
	changed := e.partnerTyping
	e.partnerTyping = false
	e.mu.Unlock()
	if changed {
		e.notify()
	}
}

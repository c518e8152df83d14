package engine

import "github.com/emberdate/spark/internal/types"

// Typing broadcast protocol. Two independent deadlines run per keystroke:
//
//   - the debounce timer signals "paused typing" shortly after the user
//     stops (quiet period, deployment-tunable);
//   - the hard timeout clears the signal unconditionally 10s after the last
//     keystroke, so the partner's indicator can never stick on if the
//     debounce timer is lost (suspended host, dropped timer).
//
// Both arm through the scheduler keyed by conversation, so teardown and
// multi-conversation hosts cancel exactly the right handles.

// SetInputText updates the input buffer and drives the typing broadcast.
// Every change counts as a keystroke: the first one of an idle input
// broadcasts is_typing=true immediately, and both stop timers re-arm.
func (e *Engine) SetInputText(value string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.inputText = value
	startBroadcast := !e.typingActive
	if startBroadcast {
		e.typingActive = true
	}
	e.mu.Unlock()

	if startBroadcast {
		e.sendTyping(true)
	}
	e.sched.Schedule(e.timerKey(timerTypingDebounce), e.cfg.TypingDebounce, e.typingExpired)
	e.sched.Schedule(e.timerKey(timerTypingTimeout), typingHardTimeout, e.typingExpired)
	e.notify()
}

// typingExpired fires from either stop timer: broadcast the pause and drop
// the sibling timer so it cannot fire a duplicate.
func (e *Engine) typingExpired() {
	e.mu.Lock()
	active := e.typingActive
	e.typingActive = false
	e.mu.Unlock()

	e.sched.Cancel(e.timerKey(timerTypingDebounce))
	e.sched.Cancel(e.timerKey(timerTypingTimeout))

	if active {
		e.sendTyping(false)
	}
}

func (e *Engine) sendTyping(isTyping bool) {
	e.send(types.Event{
		Type:        types.EventTyping,
		MatchID:     e.cfg.MatchID,
		UserID:      e.cfg.UserID,
		IsTyping:    isTyping,
		RecipientID: e.cfg.PartnerID,
	})
}

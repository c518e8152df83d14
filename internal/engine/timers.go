package engine

import (
	"sync"
	"time"
)

// Timer names used by the engine, keyed per conversation so multiple mounted
// conversations in one host never collide.
const (
	timerTypingDebounce = "typing-debounce"
	timerTypingTimeout  = "typing-timeout"
	timerPartnerTyping  = "partner-typing"
)

// TimerKey identifies one named deadline within one conversation.
type TimerKey struct {
	MatchID string
	Name    string
}

// Scheduler owns the engine's cancellable deadlines. Schedule replaces any
// deadline already armed for the key; Cancel reports whether one was armed.
// Tests drive timers by hand through a manual implementation.
type Scheduler interface {
	Schedule(key TimerKey, d time.Duration, fn func())
	Cancel(key TimerKey) bool
	CancelAll()
}

// NewScheduler returns the production scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return &timerScheduler{timers: make(map[TimerKey]*time.Timer)}
}

type timerScheduler struct {
	mu     sync.Mutex
	timers map[TimerKey]*time.Timer
}

func (s *timerScheduler) Schedule(key TimerKey, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		// A re-arm or cancel may have won the race with this firing; a
		// replaced timer must not run its callback.
		current := s.timers[key] == t
		if current {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		if current {
			fn()
		}
	})
	s.timers[key] = t
}

func (s *timerScheduler) Cancel(key TimerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

func (s *timerScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

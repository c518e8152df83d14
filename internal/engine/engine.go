// Package engine is the chat synchronization core: it reconciles optimistic
// local messages with server-confirmed state, applies the pushed event
// stream, and drives the derived behaviors around it (typing broadcast,
// read receipts, auto-scroll, exclusive voice playback).
//
// The engine owns no rendering and no transport internals. Hosts hand it a
// transport, react to OnChange by re-reading Snapshot, and receive user
// intents through the dispatcher methods.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emberdate/spark/internal/feedback"
	"github.com/emberdate/spark/internal/media"
	"github.com/emberdate/spark/internal/transport"
	"github.com/emberdate/spark/internal/types"
)

const (
	// partnerTypingTimeout flips the partner-typing flag off when no
	// typing event has arrived for this long.
	partnerTypingTimeout = 10 * time.Second

	// typingHardTimeout is the safety net bounding how long the partner
	// can see us typing after our last keystroke, even if the debounce
	// timer never fires.
	typingHardTimeout = 10 * time.Second

	// defaultTypingDebounce is the quiet period after the last keystroke
	// before a paused-typing signal goes out.
	defaultTypingDebounce = 2500 * time.Millisecond
)

// VoiceUploader pushes a recorded voice note to the media endpoint.
type VoiceUploader interface {
	Upload(ctx context.Context, data []byte, filename string) (media.UploadResult, error)
}

// Config wires one conversation session.
type Config struct {
	MatchID   string
	UserID    string
	PartnerID string

	Transport transport.Transport
	Uploader  VoiceUploader
	Player    media.Player
	Pulse     feedback.Pulse
	Scheduler Scheduler
	Logger    *zap.SugaredLogger

	// TypingDebounce overrides the paused-typing quiet period.
	TypingDebounce time.Duration

	// Now overrides the clock. Tests pin it.
	Now func() time.Time

	// Host callbacks. The engine manages optimistic state and timer/audio
	// bookkeeping around these; the host owns the actual server write.
	OnSendMessage func(text, clientKey string)
	OnReaction    func(messageID, emoji string)
	OnFocusInput  func()

	// Scroll integration. ScrollMetrics may be nil (or return nil) when
	// the host has no scroll detection; the policy then always scrolls.
	ScrollMetrics    func() *ScrollMetrics
	OnScrollToBottom func()

	// OnChange fires after every externally observable mutation. It may
	// be called from timer and transport goroutines.
	OnChange func()
}

// Snapshot is a point-in-time copy of everything a host renders from.
type Snapshot struct {
	Messages         []types.Message
	PartnerTyping    bool
	InputText        string
	PlayingURL       string
	ReactionPickerID string
}

// Engine is one mounted conversation session.
type Engine struct {
	cfg   Config
	log   *zap.SugaredLogger
	sched Scheduler
	audio *AudioCoordinator
	tr    transport.Transport
	pulse feedback.Pulse
	now   func() time.Time

	mu            sync.Mutex
	store         Store
	partnerTyping bool
	typingActive  bool
	inputText     string
	pickerID      string
	closed        bool

	unsubs []func()
}

// New builds a session and subscribes it to the transport's push stream.
// The caller must Close it to release timers, audio and subscriptions.
func New(cfg Config) (*Engine, error) {
	if cfg.MatchID == "" {
		return nil, fmt.Errorf("engine: match id required")
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("engine: user id required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("engine: transport required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Pulse == nil {
		cfg.Pulse = feedback.Silent{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewScheduler()
	}
	if cfg.TypingDebounce <= 0 {
		cfg.TypingDebounce = defaultTypingDebounce
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := &Engine{
		cfg:   cfg,
		log:   cfg.Logger,
		sched: cfg.Scheduler,
		tr:    cfg.Transport,
		pulse: cfg.Pulse,
		now:   cfg.Now,
	}
	e.audio = NewAudioCoordinator(cfg.Player, e.notify)

	e.unsubs = append(e.unsubs,
		e.tr.On(types.EventRead, e.handleRead),
		e.tr.On(types.EventMessage, e.handleMessage),
		e.tr.On(types.EventTyping, e.handleTyping),
	)
	return e, nil
}

// Mount seeds the session from the authoritative conversation record and
// acknowledges anything already unread in it.
func (e *Engine) Mount(conv types.Conversation) {
	e.ApplyConversation(conv)
}

// ApplyConversation replaces the confirmed message list wholesale from the
// authoritative conversation object, then re-runs the derived behaviors:
// read-receipt emission and the auto-scroll policy.
func (e *Engine) ApplyConversation(conv types.Conversation) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.store.ApplyConfirmed(conv.Messages)
	e.partnerTyping = conv.IsTyping
	e.mu.Unlock()

	e.emitReadReceipts()
	e.maybeScroll()
	e.notify()
}

// Snapshot copies the renderable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Messages:         e.store.View(),
		PartnerTyping:    e.partnerTyping,
		InputText:        e.inputText,
		PlayingURL:       e.audio.Playing(),
		ReactionPickerID: e.pickerID,
	}
}

// Audio exposes the playback slot for bubbles that need IsPlaying queries.
func (e *Engine) Audio() *AudioCoordinator { return e.audio }

// Close tears the session down: transport handlers are unsubscribed, every
// timer is cancelled, playback is released, and if a typing broadcast is
// still outstanding the partner's indicator is cleared.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	wasTyping := e.typingActive
	e.typingActive = false
	e.mu.Unlock()

	for _, off := range e.unsubs {
		off()
	}
	e.unsubs = nil
	e.sched.CancelAll()
	e.audio.Stop()

	if wasTyping {
		e.sendTyping(false)
	}
}

func (e *Engine) timerKey(name string) TimerKey {
	return TimerKey{MatchID: e.cfg.MatchID, Name: name}
}

// notify reports a state change to the host. Never called with e.mu held.
func (e *Engine) notify() {
	if e.cfg.OnChange != nil {
		e.cfg.OnChange()
	}
}

func (e *Engine) send(ev types.Event) {
	if err := e.tr.Send(ev); err != nil {
		e.log.Warnw("transport send failed", "type", ev.Type, "error", err)
	}
}

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emberdate/spark/internal/types"
)

// Outbound action dispatcher: user intents become transport traffic plus the
// matching optimistic store mutation.

const voiceUploadTimeout = 30 * time.Second

// SendText creates an optimistic pending message and hands the trimmed text
// to the host's send callback. Whitespace-only input is a no-op: no pending
// message, no callback, no feedback.
func (e *Engine) SendText(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	now := e.now()
	msg := types.Message{
		ID:        fmt.Sprintf("temp-%d", now.UnixNano()),
		Text:      trimmed,
		SenderID:  e.cfg.UserID,
		Timestamp: now,
		Type:      types.MessageTypeText,
		IsPending: true,
		ClientKey: uuid.NewString(),
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.store.AddPending(msg)
	e.inputText = ""
	e.mu.Unlock()

	if e.cfg.OnSendMessage != nil {
		e.cfg.OnSendMessage(trimmed, msg.ClientKey)
	}
	e.pulse.MessageSent()
	if e.cfg.OnFocusInput != nil {
		e.cfg.OnFocusInput()
	}
	e.maybeScroll()
	e.notify()
}

// SendVoice uploads the recorded blob and, on success, broadcasts a voice
// event carrying the stored media URL. Fire-and-forget: the engine stays
// responsive while the upload is in flight, and each call is independent.
// Voice sends are not optimistic; a failed upload leaves no state behind,
// only a failure pulse.
func (e *Engine) SendVoice(data []byte, duration float64) {
	go e.sendVoice(data, duration)
}

func (e *Engine) sendVoice(data []byte, duration float64) {
	if e.cfg.Uploader == nil {
		e.log.Warnw("voice send dropped: no uploader configured")
		e.pulse.SendFailed()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceUploadTimeout)
	defer cancel()

	result, err := e.cfg.Uploader.Upload(ctx, data, "voice-note.m4a")
	if err != nil {
		e.log.Warnw("voice upload failed", "error", err)
		e.pulse.SendFailed()
		return
	}

	if result.Duration == 0 {
		result.Duration = duration
	}
	e.send(types.Event{
		Type:     types.EventVoice,
		MatchID:  e.cfg.MatchID,
		UserID:   e.cfg.UserID,
		MediaURL: result.URL,
		Duration: result.Duration,
	})
}

// ToggleReaction closes any open reaction picker, pulses, and delegates the
// actual reaction write to the host. The engine's responsibility ends at
// UI-state cleanup and the emission contract.
func (e *Engine) ToggleReaction(messageID, emoji string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pickerID = ""
	e.mu.Unlock()

	e.pulse.ReactionToggled()
	if e.cfg.OnReaction != nil {
		e.cfg.OnReaction(messageID, emoji)
	}
	e.notify()
}

// OpenReactionPicker marks which message's picker the host is showing.
func (e *Engine) OpenReactionPicker(messageID string) {
	e.mu.Lock()
	e.pickerID = messageID
	e.mu.Unlock()
	e.notify()
}

// ToggleAudio routes voice-bubble taps through the exclusive playback slot.
func (e *Engine) ToggleAudio(url string) {
	if url == "" {
		return
	}
	if err := e.audio.Toggle(url); err != nil {
		e.log.Warnw("audio toggle failed", "url", url, "error", err)
	}
}

package engine

import (
	"sync"

	"github.com/emberdate/spark/internal/media"
)

// AudioCoordinator enforces at-most-one playing voice message across the
// whole conversation. Its current-URL pointer is the sole source of truth
// for "is X playing"; every message bubble queries it and no caller mutates
// playback except through Toggle.
type AudioCoordinator struct {
	mu       sync.Mutex
	player   media.Player
	current  string
	onChange func()
}

// NewAudioCoordinator wraps a player in the exclusive playback slot.
// onChange, if non-nil, fires after the playing pointer moves.
func NewAudioCoordinator(player media.Player, onChange func()) *AudioCoordinator {
	return &AudioCoordinator{player: player, onChange: onChange}
}

// Toggle pauses url if it is the current track, otherwise stops whatever is
// playing and starts url.
func (a *AudioCoordinator) Toggle(url string) error {
	a.mu.Lock()
	if a.player == nil {
		a.mu.Unlock()
		return nil
	}
	if a.current == url {
		a.player.Pause()
		a.current = ""
		a.mu.Unlock()
		a.notify()
		return nil
	}
	if a.current != "" {
		a.player.Pause()
	}
	a.current = url
	player := a.player
	a.mu.Unlock()

	err := player.Play(url, func() { a.clear(url) })
	if err != nil {
		a.clear(url)
		return err
	}
	a.notify()
	return nil
}

// IsPlaying reports whether url is the currently playing track.
func (a *AudioCoordinator) IsPlaying(url string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != "" && a.current == url
}

// Playing returns the currently playing URL, or "".
func (a *AudioCoordinator) Playing() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Stop pauses playback and clears the slot. Called on conversation teardown
// so no decode resources outlive the session.
func (a *AudioCoordinator) Stop() {
	a.mu.Lock()
	if a.player != nil && a.current != "" {
		a.player.Pause()
	}
	changed := a.current != ""
	a.current = ""
	a.mu.Unlock()
	if changed {
		a.notify()
	}
}

// clear resets the pointer if url is still current (completion callback, or
// a failed start). A track toggled away before completing stays untouched.
func (a *AudioCoordinator) clear(url string) {
	a.mu.Lock()
	changed := a.current == url
	if changed {
		a.current = ""
	}
	a.mu.Unlock()
	if changed {
		a.notify()
	}
}

func (a *AudioCoordinator) notify() {
	if a.onChange != nil {
		a.onChange()
	}
}

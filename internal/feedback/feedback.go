// Package feedback produces the short local pulses (sounds, notification
// taps) the engine fires around sends, failures and incoming receipts.
package feedback

import "github.com/gen2brain/beeep"

// Pulse is the feedback surface the engine calls into. Implementations must
// be cheap and must never block the caller for long.
type Pulse interface {
	MessageSent()
	SendFailed()
	ReadReceipt()
	ReactionToggled()
}

// Silent discards every pulse. Used in tests and headless runs.
type Silent struct{}

func (Silent) MessageSent()     {}
func (Silent) SendFailed()      {}
func (Silent) ReadReceipt()     {}
func (Silent) ReactionToggled() {}

// Beeper plays system feedback through beeep. Errors are swallowed: feedback
// is best-effort and must never surface into the conversation flow.
type Beeper struct{}

func (Beeper) MessageSent() {
	_ = beeep.Beep(660, 120)
}

func (Beeper) SendFailed() {
	_ = beeep.Beep(220, 300)
}

func (Beeper) ReadReceipt() {
	_ = beeep.Beep(880, 60)
}

func (Beeper) ReactionToggled() {
	_ = beeep.Beep(523, 60)
}

// Package chat is the terminal host for one conversation: a bubbletea model
// that renders the engine's snapshot and feeds user intents back into it.
// All synchronization logic lives in the engine; this package only draws.
package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emberdate/spark/internal/engine"
)

// RefreshMsg tells the model to re-read the engine snapshot. The engine's
// OnChange callback posts it from whatever goroutine mutated state.
type RefreshMsg struct{}

// StatusMsg surfaces a transient status line (connection drops, errors).
type StatusMsg struct{ Text string }

// Model is the conversation screen.
type Model struct {
	eng         *engine.Engine
	userID      string
	partnerName string

	viewport viewport.Model
	input    textinput.Model
	status   string

	width  int
	height int
	ready  bool
}

// New builds the conversation screen over a mounted engine session.
func New(eng *engine.Engine, userID, partnerName string) *Model {
	input := textinput.New()
	input.Placeholder = "Message " + partnerName + "…"
	input.CharLimit = 2000
	input.Focus()

	return &Model{
		eng:         eng,
		userID:      userID,
		partnerName: partnerName,
		input:       input,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

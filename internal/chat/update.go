package chat

import (
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emberdate/spark/internal/engine"
	"github.com/emberdate/spark/internal/types"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport(true)
		return m, nil

	case RefreshMsg:
		m.refreshViewport(false)
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		m.submit(m.input.Value())
		m.input.SetValue("")
		return m, nil

	case "pgup", "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown", "ctrl+d":
		m.viewport.HalfViewDown()
		return m, nil

	case "ctrl+p":
		m.toggleLatestVoice()
		return m, nil

	case "ctrl+y":
		m.copyLatestMessage()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Every edit counts as a keystroke for the typing broadcast.
	if v := m.input.Value(); v != before {
		m.eng.SetInputText(v)
	}
	return m, cmd
}

// submit routes slash commands, everything else is a text send.
func (m *Model) submit(raw string) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "/voice "):
		m.sendVoiceFile(strings.TrimSpace(strings.TrimPrefix(trimmed, "/voice ")))
	case strings.HasPrefix(trimmed, "/react "):
		m.reactToLatest(strings.TrimSpace(strings.TrimPrefix(trimmed, "/react ")))
	default:
		m.eng.SendText(raw)
	}
}

func (m *Model) sendVoiceFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		m.status = "voice: " + err.Error()
		return
	}
	m.eng.SendVoice(data, 0)
	m.status = "voice note uploading…"
}

func (m *Model) reactToLatest(emoji string) {
	if emoji == "" {
		m.status = "usage: /react <emoji>"
		return
	}
	target := m.latestPartnerMessage()
	if target == nil {
		m.status = "nothing to react to"
		return
	}
	m.eng.ToggleReaction(target.ID, emoji)
}

func (m *Model) toggleLatestVoice() {
	messages := m.eng.Snapshot().Messages
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Type == types.MessageTypeVoice && messages[i].AudioURL != "" {
			m.eng.ToggleAudio(messages[i].AudioURL)
			return
		}
	}
	m.status = "no voice message to play"
}

func (m *Model) copyLatestMessage() {
	messages := m.eng.Snapshot().Messages
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Text != "" {
			if err := clipboard.WriteAll(messages[i].Text); err != nil {
				m.status = "copy: " + err.Error()
			} else {
				m.status = "copied"
			}
			return
		}
	}
}

func (m *Model) latestPartnerMessage() *types.Message {
	messages := m.eng.Snapshot().Messages
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].SenderID != m.userID {
			return &messages[i]
		}
	}
	return nil
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	// Header, typing line, input line.
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewportSized(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.input.Width = m.width - 4
}

// refreshViewport re-renders messages and applies the auto-scroll policy:
// the view follows new messages only while the reader is already near the
// bottom, so scrolling up to history is never interrupted.
func (m *Model) refreshViewport(force bool) {
	if !m.ready {
		return
	}
	content := m.renderMessages()
	metrics := &engine.ScrollMetrics{
		ScrollHeight: lipgloss.Height(content),
		ScrollTop:    m.viewport.YOffset,
		ClientHeight: m.viewport.Height,
	}
	m.viewport.SetContent(content)
	if force || engine.ShouldScrollToBottom(metrics) {
		m.viewport.GotoBottom()
	}
}

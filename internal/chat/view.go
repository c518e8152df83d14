package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/emberdate/spark/internal/types"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	ownStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	partnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("219"))
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	typingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func viewportSized(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	return vp
}

func (m *Model) View() string {
	if !m.ready {
		return "connecting…"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("♥ " + m.partnerName))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.typingLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) typingLine() string {
	snap := m.eng.Snapshot()
	if snap.PartnerTyping {
		return typingStyle.Render(m.partnerName + " is typing…")
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m *Model) renderMessages() string {
	snap := m.eng.Snapshot()
	if len(snap.Messages) == 0 {
		return metaStyle.Render("Say hi — you matched for a reason.")
	}

	var b strings.Builder
	for _, msg := range snap.Messages {
		b.WriteString(m.renderMessage(msg, snap.PlayingURL))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderMessage(msg types.Message, playingURL string) string {
	label := m.partnerName
	style := partnerStyle
	if msg.SenderID == m.userID {
		label = "you"
		style = ownStyle
	}

	stamp := metaStyle.Render(msg.Timestamp.Local().Format("15:04"))
	head := fmt.Sprintf("%s %s", stamp, style.Render(label+":"))

	body := msg.Text
	switch msg.Type {
	case types.MessageTypeVoice:
		icon := "▶"
		if msg.AudioURL != "" && msg.AudioURL == playingURL {
			icon = "❚❚"
		}
		body = fmt.Sprintf("%s voice note (%.0fs)", icon, msg.Duration)
	case types.MessageTypeImage:
		body = "[photo] " + msg.Text
	case types.MessageTypeGift:
		body = "🎁 " + msg.Text
	}

	line := head + " " + body
	if msg.IsPending {
		line += " " + pendingStyle.Render("…sending")
	} else if msg.SenderID == m.userID && msg.IsRead {
		line += " " + metaStyle.Render("✓✓")
	}
	if len(msg.Reactions) > 0 {
		var emojis []string
		for _, r := range msg.Reactions {
			emojis = append(emojis, r.Emoji)
		}
		line += " " + metaStyle.Render("["+strings.Join(emojis, " ")+"]")
	}
	return line
}

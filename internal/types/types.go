package types

import "time"

// MessageType represents the kind of content a message carries.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeGift     MessageType = "gift"
	MessageTypeVoice    MessageType = "voice"
	MessageTypeReaction MessageType = "reaction-only"
)

// Reaction is one emoji reaction on a message. Last write wins per user.
type Reaction struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"user_id"`
}

// Message is one unit of conversation content.
//
// Server-confirmed messages carry a server-issued ID. A message created
// locally carries a "temp-<nanos>" ID and IsPending=true until an echo
// reconciles it. ClientKey is generated at optimistic-creation time and
// sent with the outbound message so the echo can be correlated exactly;
// echoes that do not round-trip the key are matched by sender + body.
type Message struct {
	ID        string      `json:"id"`
	Text      string      `json:"text,omitempty"`
	SenderID  string      `json:"sender_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
	IsRead    bool        `json:"is_read"`
	IsPending bool        `json:"is_pending,omitempty"`
	AudioURL  string      `json:"audio_url,omitempty"`
	Duration  float64     `json:"duration,omitempty"`
	ClientKey string      `json:"client_key,omitempty"`
	Reactions []Reaction  `json:"reactions,omitempty"`
}

// SetReaction applies a last-write-wins reaction for a user.
func (m *Message) SetReaction(userID, emoji string) {
	for i, r := range m.Reactions {
		if r.UserID == userID {
			m.Reactions[i].Emoji = emoji
			return
		}
	}
	m.Reactions = append(m.Reactions, Reaction{Emoji: emoji, UserID: userID})
}

// Conversation is the authoritative server-side view of a match thread.
// Messages is replaced wholesale on every refresh.
type Conversation struct {
	MatchID   string    `json:"match_id"`
	PartnerID string    `json:"partner_id"`
	Messages  []Message `json:"messages"`
	IsTyping  bool      `json:"is_typing,omitempty"`
}

package types

// EventType names a wire event on the match channel.
type EventType string

const (
	// Consumed from the server push stream.
	EventRead    EventType = "read"
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"

	// Produced toward the server.
	EventVoice EventType = "voice"
)

// Event is the flat wire envelope for the match channel. Which fields are
// populated depends on Type; absent fields are omitted on the wire and the
// reducer treats them defensively.
type Event struct {
	Type    EventType `json:"type"`
	MatchID string    `json:"match_id,omitempty"`

	// read
	MessageIDs []string `json:"message_ids,omitempty"`

	// message (server echo / partner message confirmation)
	SenderID  string `json:"sender_id,omitempty"`
	Content   string `json:"content,omitempty"`
	ClientKey string `json:"client_key,omitempty"`

	// typing
	UserID      string `json:"user_id,omitempty"`
	IsTyping    bool   `json:"is_typing,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`

	// voice
	MediaURL string  `json:"media_url,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

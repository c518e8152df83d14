package command

import (
	"fmt"
	"sync"
	"time"

	"github.com/emberdate/spark/internal/engine"
	"github.com/emberdate/spark/internal/transport"
	"github.com/emberdate/spark/internal/types"
)

// conversationKeeper plays the host's side of the engine contract: it owns
// the authoritative conversation record and refreshes the engine wholesale
// whenever that record changes. In the mobile app this role belongs to the
// screen that fetches the match; here it is fed by the push stream.
type conversationKeeper struct {
	mu        sync.Mutex
	matchID   string
	partnerID string
	seq       int
	messages  []types.Message

	eng *engine.Engine
}

func newConversationKeeper(matchID, partnerID string) *conversationKeeper {
	return &conversationKeeper{matchID: matchID, partnerID: partnerID}
}

// attach binds the keeper to the engine and the push stream. Returns the
// unsubscribe funcs; the caller releases them on shutdown.
func (k *conversationKeeper) attach(eng *engine.Engine, tr transport.Transport) []func() {
	k.eng = eng
	return []func(){
		tr.On(types.EventMessage, k.onMessage),
		tr.On(types.EventVoice, k.onVoice),
		tr.On(types.EventRead, k.onRead),
	}
}

func (k *conversationKeeper) conversation() types.Conversation {
	k.mu.Lock()
	defer k.mu.Unlock()
	msgs := make([]types.Message, len(k.messages))
	copy(msgs, k.messages)
	return types.Conversation{MatchID: k.matchID, PartnerID: k.partnerID, Messages: msgs}
}

func (k *conversationKeeper) refresh() {
	if k.eng != nil {
		k.eng.ApplyConversation(k.conversation())
	}
}

func (k *conversationKeeper) nextID() string {
	k.seq++
	return fmt.Sprintf("srv-%d", k.seq)
}

func (k *conversationKeeper) onMessage(ev types.Event) {
	if ev.SenderID == "" || ev.Content == "" {
		return
	}
	k.mu.Lock()
	k.messages = append(k.messages, types.Message{
		ID:        k.nextID(),
		Text:      ev.Content,
		SenderID:  ev.SenderID,
		Timestamp: time.Now(),
		Type:      types.MessageTypeText,
		ClientKey: ev.ClientKey,
	})
	k.mu.Unlock()
	k.refresh()
}

func (k *conversationKeeper) onVoice(ev types.Event) {
	if ev.MediaURL == "" {
		return
	}
	sender := ev.UserID
	if sender == "" {
		sender = k.partnerID
	}
	k.mu.Lock()
	k.messages = append(k.messages, types.Message{
		ID:        k.nextID(),
		SenderID:  sender,
		Timestamp: time.Now(),
		Type:      types.MessageTypeVoice,
		AudioURL:  ev.MediaURL,
		Duration:  ev.Duration,
	})
	k.mu.Unlock()
	k.refresh()
}

func (k *conversationKeeper) onRead(ev types.Event) {
	if len(ev.MessageIDs) == 0 {
		return
	}
	want := make(map[string]struct{}, len(ev.MessageIDs))
	for _, id := range ev.MessageIDs {
		want[id] = struct{}{}
	}
	k.mu.Lock()
	for i := range k.messages {
		if _, ok := want[k.messages[i].ID]; ok {
			k.messages[i].IsRead = true
		}
	}
	k.mu.Unlock()
	k.refresh()
}

// applyReaction is the host's conversation-update callback for reactions.
func (k *conversationKeeper) applyReaction(userID, messageID, emoji string) {
	k.mu.Lock()
	for i := range k.messages {
		if k.messages[i].ID == messageID {
			k.messages[i].SetReaction(userID, emoji)
			break
		}
	}
	k.mu.Unlock()
	k.refresh()
}

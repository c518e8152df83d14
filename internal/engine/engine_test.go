package engine

import (
	"reflect"
	"testing"

	"github.com/emberdate/spark/internal/types"
)

func TestMountEmitsBatchedReadReceipt(t *testing.T) {
	rig := newRig(t, nil)

	own := confirmedMsg("msg-own", "user-1", "hi")
	unreadA := confirmedMsg("msg-a", "user-2", "hey")
	unreadB := confirmedMsg("msg-b", "user-2", "you there?")
	rig.e.Mount(types.Conversation{
		MatchID:   "match-1",
		PartnerID: "user-2",
		Messages:  []types.Message{own, unreadA, unreadB},
	})

	reads := rig.tr.SentOf(types.EventRead)
	if len(reads) != 1 {
		t.Fatalf("emitted %d read events, want one batch", len(reads))
	}
	if !reflect.DeepEqual(reads[0].MessageIDs, []string{"msg-a", "msg-b"}) {
		t.Fatalf("read batch = %v, want [msg-a msg-b]", reads[0].MessageIDs)
	}
	if reads[0].MatchID != "match-1" {
		t.Errorf("read event match_id = %q", reads[0].MatchID)
	}
}

func TestMountScenario(t *testing.T) {
	// One unread inbound message from the partner, plus an unread message
	// authored by the viewer: only the partner's id may ever be
	// acknowledged.
	rig := newRig(t, nil)

	rig.e.Mount(types.Conversation{
		MatchID:   "match-1",
		PartnerID: "user-2",
		Messages: []types.Message{
			confirmedMsg("msg-unread", "user-2", "hello?"),
			confirmedMsg("msg-own-unread", "user-1", "hello?"),
		},
	})

	reads := rig.tr.SentOf(types.EventRead)
	if len(reads) != 1 {
		t.Fatalf("emitted %d read events, want 1", len(reads))
	}
	if !reflect.DeepEqual(reads[0].MessageIDs, []string{"msg-unread"}) {
		t.Fatalf("read batch = %v, want [msg-unread]", reads[0].MessageIDs)
	}
	for _, ev := range reads {
		for _, id := range ev.MessageIDs {
			if id == "msg-own-unread" {
				t.Fatal("own message acknowledged in a read event")
			}
		}
	}
}

func TestRefreshDoesNotReemitAcknowledgedReads(t *testing.T) {
	rig := newRig(t, nil)
	conv := types.Conversation{
		MatchID:   "match-1",
		PartnerID: "user-2",
		Messages:  []types.Message{confirmedMsg("msg-a", "user-2", "hey")},
	}
	rig.e.Mount(conv)

	// Server-side read state catches up on the next refresh.
	read := conv.Messages[0]
	read.IsRead = true
	rig.e.ApplyConversation(types.Conversation{
		MatchID:   "match-1",
		PartnerID: "user-2",
		Messages:  []types.Message{read},
	})

	if reads := rig.tr.SentOf(types.EventRead); len(reads) != 1 {
		t.Fatalf("emitted %d read events across refreshes, want 1", len(reads))
	}
}

func TestRefreshEmitsForNewlyArrivedUnread(t *testing.T) {
	rig := newRig(t, nil)
	rig.e.Mount(types.Conversation{MatchID: "match-1", PartnerID: "user-2"})

	if reads := rig.tr.SentOf(types.EventRead); len(reads) != 0 {
		t.Fatalf("empty conversation emitted %d read events", len(reads))
	}

	rig.e.ApplyConversation(types.Conversation{
		MatchID:   "match-1",
		PartnerID: "user-2",
		Messages:  []types.Message{confirmedMsg("msg-new", "user-2", "hi!")},
	})

	reads := rig.tr.SentOf(types.EventRead)
	if len(reads) != 1 || !reflect.DeepEqual(reads[0].MessageIDs, []string{"msg-new"}) {
		t.Fatalf("expected one read batch for msg-new, got %+v", reads)
	}
}

func TestApplyConversationSeedsPartnerTyping(t *testing.T) {
	rig := newRig(t, nil)
	rig.e.Mount(types.Conversation{MatchID: "match-1", PartnerID: "user-2", IsTyping: true})
	if !rig.e.Snapshot().PartnerTyping {
		t.Fatal("conversation record's typing flag not reflected")
	}
}

func TestCloseCancelsEverything(t *testing.T) {
	rig := newRig(t, nil)
	rig.e.SetInputText("h")
	rig.tr.Inject(types.Event{Type: types.EventTyping, UserID: "user-2", IsTyping: true})
	rig.e.ToggleAudio("url-a")

	rig.e.Close()

	for _, name := range []string{timerTypingDebounce, timerTypingTimeout, timerPartnerTyping} {
		if rig.sched.IsArmed(rig.key(name)) {
			t.Errorf("timer %s survived Close", name)
		}
	}
	if rig.e.audio.Playing() != "" {
		t.Error("audio slot survived Close")
	}
	if playing, _ := rig.player.state(); playing != "" {
		t.Error("player still playing after Close")
	}
}

func TestEventsAfterCloseAreIgnored(t *testing.T) {
	rig := newRig(t, nil)
	rig.e.Close()

	// Handlers are unsubscribed on Close; even a direct call must no-op.
	rig.e.handleTyping(types.Event{Type: types.EventTyping, UserID: "user-2", IsTyping: true})
	rig.e.handleRead(types.Event{Type: types.EventRead, MessageIDs: []string{"x"}})
	rig.e.SendText("late")
	rig.e.SetInputText("late")

	snap := rig.e.Snapshot()
	if snap.PartnerTyping || len(snap.Messages) != 0 || snap.InputText != "" {
		t.Fatalf("state mutated after Close: %+v", snap)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	rig := newRig(t, nil)
	rig.e.Close()
	rig.e.Close()
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing match id", func(c *Config) { c.MatchID = "" }},
		{"missing user id", func(c *Config) { c.UserID = "" }},
		{"missing transport", func(c *Config) { c.Transport = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{MatchID: "m", UserID: "u", Transport: transportForValidation()}
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}

func TestOnChangeFiresOnMutations(t *testing.T) {
	changes := 0
	rig := newRig(t, func(cfg *Config) {
		cfg.OnChange = func() { changes++ }
	})

	rig.e.SetInputText("h")
	rig.e.SendText("h")
	rig.tr.Inject(types.Event{Type: types.EventTyping, UserID: "user-2", IsTyping: true})

	if changes < 3 {
		t.Fatalf("OnChange fired %d times across three mutations", changes)
	}
}

package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emberdate/spark/internal/chat"
	"github.com/emberdate/spark/internal/core"
	"github.com/emberdate/spark/internal/engine"
	"github.com/emberdate/spark/internal/feedback"
	"github.com/emberdate/spark/internal/media"
	"github.com/emberdate/spark/internal/transport"
	"github.com/emberdate/spark/internal/types"
)

// uiNotifier bridges engine callbacks (arbitrary goroutines) to the tea
// program once it exists.
type uiNotifier struct {
	mu sync.Mutex
	p  *tea.Program
}

func (n *uiNotifier) set(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.p = p
}

func (n *uiNotifier) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a conversation with a match",
		RunE:  runChat,
	}
	cmd.Flags().String("match", "", "match id of the conversation")
	cmd.Flags().String("partner", "", "partner user id")
	cmd.Flags().String("partner-name", "", "partner display name")
	cmd.Flags().Bool("offline", false, "run against a scripted in-memory server")
	cmd.Flags().Bool("silent", false, "disable feedback sounds")
	_ = cmd.MarkFlagRequired("match")
	_ = cmd.MarkFlagRequired("partner")
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	matchID, _ := cmd.Flags().GetString("match")
	partnerID, _ := cmd.Flags().GetString("partner")
	partnerName, _ := cmd.Flags().GetString("partner-name")
	offline, _ := cmd.Flags().GetBool("offline")
	silent, _ := cmd.Flags().GetBool("silent")
	if partnerName == "" {
		partnerName = partnerID
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	profile, err := core.ReadProfile()
	if err != nil {
		return err
	}
	if offline && profile == nil {
		profile = &core.Profile{UserID: "user-1", ServerURL: "offline"}
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	var tr transport.Transport
	if offline {
		tr = scriptedTransport(profile.UserID, partnerID, matchID)
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		url := fmt.Sprintf("%s?match_id=%s&user_id=%s", profile.ServerURL, matchID, profile.UserID)
		conn, err := transport.Dial(ctx, url, log)
		if err != nil {
			return err
		}
		tr = conn
	}
	defer func() { _ = tr.Close() }()

	var uploader engine.VoiceUploader
	if !offline && profile.UploadURL != "" {
		up, err := media.NewUploader(profile.UploadURL, profile.AuthToken)
		if err != nil {
			return err
		}
		uploader = up
	}

	var player media.Player
	if execPlayer, err := media.NewExecPlayer(); err == nil {
		player = execPlayer
	} else {
		log.Infow("voice playback disabled", "reason", err)
	}

	var pulse feedback.Pulse = feedback.Beeper{}
	if silent {
		pulse = feedback.Silent{}
	}

	notifier := &uiNotifier{}
	keeper := newConversationKeeper(matchID, partnerID)

	cfg := engine.Config{
		MatchID:   matchID,
		UserID:    profile.UserID,
		PartnerID: partnerID,
		Transport: tr,
		Uploader:  uploader,
		Player:    player,
		Pulse:     pulse,
		Logger:    log,
		OnChange:  func() { notifier.send(chat.RefreshMsg{}) },
		OnSendMessage: func(text, clientKey string) {
			// The host's server write: put the message on the wire.
			err := tr.Send(types.Event{
				Type:      types.EventMessage,
				MatchID:   matchID,
				SenderID:  profile.UserID,
				Content:   text,
				ClientKey: clientKey,
			})
			if err != nil {
				notifier.send(chat.StatusMsg{Text: "send failed: " + err.Error()})
			}
		},
		// Reactions are a conversation update, not an engine concern.
		OnReaction: func(messageID, emoji string) {
			keeper.applyReaction(profile.UserID, messageID, emoji)
		},
	}
	if profile.TypingDebounceMS > 0 {
		cfg.TypingDebounce = time.Duration(profile.TypingDebounceMS) * time.Millisecond
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	offs := keeper.attach(eng, tr)
	defer func() {
		for _, off := range offs {
			off()
		}
	}()

	model := chat.New(eng, profile.UserID, partnerName)
	p := tea.NewProgram(model, tea.WithAltScreen())
	notifier.set(p)

	eng.Mount(keeper.conversation())

	_, err = p.Run()
	return err
}

// scriptedTransport backs --offline: an in-memory channel whose "server"
// echoes sends back and plays a short partner script, so the whole loop
// (optimistic send, echo reconciliation, typing, receipts) runs with no
// backend.
func scriptedTransport(userID, partnerID, matchID string) *transport.Fake {
	fake := transport.NewFake()
	replied := false
	fake.OnSend = func(ev types.Event) {
		switch ev.Type {
		case types.EventMessage:
			echo := ev
			time.AfterFunc(300*time.Millisecond, func() { fake.Inject(echo) })
			if !replied {
				replied = true
				time.AfterFunc(1200*time.Millisecond, func() {
					fake.Inject(types.Event{Type: types.EventTyping, MatchID: matchID, UserID: partnerID, IsTyping: true})
				})
				time.AfterFunc(3*time.Second, func() {
					fake.Inject(types.Event{Type: types.EventTyping, MatchID: matchID, UserID: partnerID, IsTyping: false})
					fake.Inject(types.Event{Type: types.EventMessage, MatchID: matchID, SenderID: partnerID, Content: "oh hey! I was hoping you'd write first"})
				})
			}
		case types.EventVoice:
			echo := ev
			time.AfterFunc(300*time.Millisecond, func() { fake.Inject(echo) })
		case types.EventRead:
			// The scripted server acknowledges reads silently.
		}
	}
	return fake
}

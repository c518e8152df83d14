package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emberdate/spark/internal/media"
	"github.com/emberdate/spark/internal/transport"
)

// manualScheduler lets tests fire or drop timers by hand instead of
// sleeping. Schedule records the deadline; Fire runs it.
type manualScheduler struct {
	mu    sync.Mutex
	armed map[TimerKey]armedTimer
}

type armedTimer struct {
	d  time.Duration
	fn func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{armed: make(map[TimerKey]armedTimer)}
}

func (s *manualScheduler) Schedule(key TimerKey, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed[key] = armedTimer{d: d, fn: fn}
}

func (s *manualScheduler) Cancel(key TimerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[key]
	delete(s.armed, key)
	return ok
}

func (s *manualScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = make(map[TimerKey]armedTimer)
}

// Fire runs the armed callback for key, as the deadline passing would.
func (s *manualScheduler) Fire(key TimerKey) bool {
	s.mu.Lock()
	t, ok := s.armed[key]
	delete(s.armed, key)
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.fn()
	return true
}

func (s *manualScheduler) IsArmed(key TimerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[key]
	return ok
}

func (s *manualScheduler) Delay(key TimerKey) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed[key].d
}

// recordPulse counts feedback calls.
type recordPulse struct {
	mu        sync.Mutex
	sent      int
	failed    int
	receipts  int
	reactions int
}

func (p *recordPulse) MessageSent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent++
}

func (p *recordPulse) SendFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
}

func (p *recordPulse) ReadReceipt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.receipts++
}

func (p *recordPulse) ReactionToggled() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions++
}

func (p *recordPulse) counts() (sent, failed, receipts, reactions int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent, p.failed, p.receipts, p.reactions
}

// fakePlayer records playback commands and lets tests complete tracks.
type fakePlayer struct {
	mu      sync.Mutex
	playing string
	played  []string
	paused  int
	onDone  map[string]func()
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{onDone: make(map[string]func())}
}

func (p *fakePlayer) Play(url string, onDone func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = url
	p.played = append(p.played, url)
	p.onDone[url] = onDone
	return nil
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused++
	p.playing = ""
}

// finish simulates playback of url reaching its natural end.
func (p *fakePlayer) finish(url string) {
	p.mu.Lock()
	done := p.onDone[url]
	delete(p.onDone, url)
	if p.playing == url {
		p.playing = ""
	}
	p.mu.Unlock()
	if done != nil {
		done()
	}
}

func (p *fakePlayer) state() (playing string, paused int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing, p.paused
}

// fakeUploader returns a canned result or error.
type fakeUploader struct {
	mu     sync.Mutex
	result media.UploadResult
	err    error
	calls  int
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, _ string) (media.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return media.UploadResult{}, u.err
	}
	return u.result, nil
}

func transportForValidation() transport.Transport { return transport.NewFake() }

// testRig bundles an engine with observable fakes for every side effect.
type testRig struct {
	e      *Engine
	tr     *transport.Fake
	sched  *manualScheduler
	pulse  *recordPulse
	player *fakePlayer
}

func (r *testRig) key(name string) TimerKey {
	return TimerKey{MatchID: r.e.cfg.MatchID, Name: name}
}

func newRig(t *testing.T, mutate func(*Config)) *testRig {
	t.Helper()
	rig := &testRig{
		tr:     transport.NewFake(),
		sched:  newManualScheduler(),
		pulse:  &recordPulse{},
		player: newFakePlayer(),
	}
	cfg := Config{
		MatchID:   "match-1",
		UserID:    "user-1",
		PartnerID: "user-2",
		Transport: rig.tr,
		Scheduler: rig.sched,
		Pulse:     rig.pulse,
		Player:    rig.player,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	rig.e = e
	return rig
}

package media

import (
	"fmt"
	"os/exec"
	"sync"
)

// Player starts and stops playback of one audio URL at a time. Play replaces
// whatever was playing; onDone runs when playback ends on its own, not when
// Pause cuts it short.
type Player interface {
	Play(url string, onDone func()) error
	Pause()
}

// playerCommands are probed in order; the first one on PATH wins.
// afplay covers macOS, the rest are common Linux players that accept a URL
// or file path as their final argument.
var playerCommands = [][]string{
	{"afplay"},
	{"mpg123", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpv", "--no-video", "--really-quiet"},
}

// ExecPlayer shells out to a system audio player, the same way notification
// delivery shells out to the platform notifier.
type ExecPlayer struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecPlayer probes for a usable system player.
func NewExecPlayer() (*ExecPlayer, error) {
	if lookupPlayer() == nil {
		return nil, fmt.Errorf("no audio player found on PATH (tried afplay, mpg123, ffplay, mpv)")
	}
	return &ExecPlayer{}, nil
}

func lookupPlayer() []string {
	for _, candidate := range playerCommands {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return candidate
		}
	}
	return nil
}

func (p *ExecPlayer) Play(url string, onDone func()) error {
	argv := lookupPlayer()
	if argv == nil {
		return fmt.Errorf("no audio player available")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	cmd := exec.Command(argv[0], append(argv[1:], url)...)
	if err := cmd.Start(); err != nil {
		return err
	}
	p.cmd = cmd

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		finished := p.cmd == cmd
		if finished {
			p.cmd = nil
		}
		p.mu.Unlock()
		// Killed playback (Pause or replacement) exits with an error and
		// must not report completion.
		if finished && err == nil && onDone != nil {
			onDone()
		}
	}()
	return nil
}

func (p *ExecPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *ExecPlayer) stopLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.cmd = nil
}

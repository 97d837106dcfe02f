package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// URLPlaceholder is replaced by the source URL in player arguments.
// When no argument contains it, the URL is appended.
const URLPlaceholder = "{url}"

const eventBufferSize = 16

// ExecPlayer implements Sink by running an external player command per source.
//
// Pause and resume suspend the child process. A child that exits cleanly
// raises EventCompleted, or is restarted when looping is enabled.
type ExecPlayer struct {
	command string
	args    []string
	logger  zerolog.Logger
	events  chan Event

	mu     sync.Mutex
	source string
	loaded bool
	loop   bool
	paused bool
	proc   *exec.Cmd
	cancel context.CancelFunc
	gen    uint64 // bumped whenever we stop the child ourselves
	closed bool
}

// NewExecPlayer creates a player that runs command with args for every source
func NewExecPlayer(command string, args []string, logger zerolog.Logger) *ExecPlayer {
	return &ExecPlayer{
		command: command,
		args:    append([]string(nil), args...),
		logger:  logger.With().Str("component", "player").Logger(),
		events:  make(chan Event, eventBufferSize),
	}
}

// Events returns the channel on which ready/completed/failed signals are raised
func (p *ExecPlayer) Events() <-chan Event {
	return p.events
}

// SetSource stops any running child and remembers url for the next Load
func (p *ExecPlayer) SetSource(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.source = url
	p.loaded = false
}

// Load prepares the current source and raises EventReady
func (p *ExecPlayer) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if p.source == "" {
		return
	}
	p.loaded = true
	p.emitLocked(Event{Kind: EventReady, Source: p.source})
}

// Play starts the child for the loaded source, or resumes a suspended one
func (p *ExecPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded || p.closed {
		return
	}

	if p.proc != nil {
		if p.paused {
			if err := resumeProcess(p.proc); err != nil {
				p.logger.Warn().Err(err).Msg("Failed to resume player")
				return
			}
			p.paused = false
		}
		return
	}

	p.startLocked()
}

// Pause suspends the running child
func (p *ExecPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.proc == nil || p.paused {
		return
	}
	if err := suspendProcess(p.proc); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to pause player")
		return
	}
	p.paused = true
}

// SetLoop sets whether a cleanly exiting child is restarted
func (p *ExecPlayer) SetLoop(loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = loop
}

// Close stops any running child and closes the event channel
func (p *ExecPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.stopLocked()
	p.closed = true
	close(p.events)
	return nil
}

// startLocked launches the child for the current source.
// Must be called with lock held.
func (p *ExecPlayer) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, p.command, buildArgs(p.args, p.source)...)

	if err := cmd.Start(); err != nil {
		cancel()
		p.logger.Error().Err(err).Str("command", p.command).Msg("Failed to start player")
		p.emitLocked(Event{
			Kind:   EventFailed,
			Source: p.source,
			Err:    fmt.Errorf("failed to start %s: %w", p.command, err),
		})
		return
	}

	p.proc = cmd
	p.cancel = cancel
	p.paused = false

	p.logger.Debug().
		Str("source", p.source).
		Int("pid", cmd.Process.Pid).
		Msg("Player started")

	go p.wait(cmd, cancel, p.gen, p.source)
}

// wait reaps the child and raises the matching event unless we stopped it
func (p *ExecPlayer) wait(cmd *exec.Cmd, cancel context.CancelFunc, gen uint64, source string) {
	err := cmd.Wait()
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.closed {
		return
	}
	p.proc = nil
	p.cancel = nil
	p.paused = false

	switch {
	case err != nil:
		p.logger.Warn().Err(err).Str("source", source).Msg("Player exited with error")
		p.emitLocked(Event{Kind: EventFailed, Source: source, Err: err})
	case p.loop:
		p.logger.Debug().Str("source", source).Msg("Looping source")
		p.startLocked()
	default:
		p.emitLocked(Event{Kind: EventCompleted, Source: source})
	}
}

// stopLocked kills the running child, if any.
// Must be called with lock held.
func (p *ExecPlayer) stopLocked() {
	if p.proc == nil {
		return
	}
	p.gen++
	p.cancel()
	p.proc = nil
	p.cancel = nil
	p.paused = false
}

// emitLocked sends ev without blocking.
// Must be called with lock held.
func (p *ExecPlayer) emitLocked(ev Event) {
	if p.closed {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.logger.Warn().Str("event", ev.Kind.String()).Msg("Event buffer full, dropping event")
	}
}

// buildArgs substitutes url into args
func buildArgs(args []string, url string) []string {
	out := make([]string, 0, len(args)+1)
	substituted := false
	for _, arg := range args {
		if strings.Contains(arg, URLPlaceholder) {
			arg = strings.ReplaceAll(arg, URLPlaceholder, url)
			substituted = true
		}
		out = append(out, arg)
	}
	if !substituted {
		out = append(out, url)
	}
	return out
}

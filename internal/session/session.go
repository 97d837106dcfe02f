// Package session runs a playback controller as a single event loop.
//
// UI actions, media events and refresh ticks are turned into closures and
// executed one at a time on the session goroutine. Remote loads resolve on
// their own goroutines; the controller discards results that were
// superseded in the meantime. The session also serves object URLs, metrics
// and a small control API over HTTP.
package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/threadplay/internal/blob"
	"github.com/jfmyers9/threadplay/internal/media"
	"github.com/jfmyers9/threadplay/internal/player"
)

const actionBuffer = 64

// Config holds session configuration
type Config struct {
	RefreshInterval time.Duration // How often to reload the current thread (0 disables)
	ShutdownTimeout time.Duration // Grace period for the HTTP server on shutdown
}

// EventSource delivers media sink events
type EventSource interface {
	Events() <-chan media.Event
}

// Session coordinates a controller with its event sources
type Session struct {
	config   Config
	ctrl     *player.Controller
	events   EventSource
	blobs    *blob.Store
	listener net.Listener
	server   *http.Server
	actions  chan func()
	logger   zerolog.Logger

	// ctx is cancelled when the session stops; it bounds in-flight loads
	ctx    context.Context
	cancel context.CancelFunc
	loads  sync.WaitGroup
}

// Listen opens the listener the session serves on. Use the listener's
// address to build the blob store's base URL before calling New.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// New creates a Session. events and blobs may be nil; listener may be nil
// to run without the HTTP server.
func New(cfg Config, ctrl *player.Controller, events EventSource, blobs *blob.Store, listener net.Listener, logger zerolog.Logger) *Session {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		config:   cfg,
		ctrl:     ctrl,
		events:   events,
		blobs:    blobs,
		listener: listener,
		actions:  make(chan func(), actionBuffer),
		logger:   logger.With().Str("component", "session").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.server = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Run processes actions until ctx is cancelled or Stop is called
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info().Msg("Starting session")

	go func() {
		select {
		case <-ctx.Done():
			s.cancel()
		case <-s.ctx.Done():
		}
	}()

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	if s.listener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("Serving HTTP")
			if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
				s.cancel()
			}
		}()
	}

	if s.events != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.pumpEvents(s.ctx)
		}()
	}

	if s.config.RefreshInterval > 0 {
		requests := make(chan string, 1)
		refresher := player.NewRefresher(s.ctrl.Location, s.config.RefreshInterval, s.logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := refresher.Run(s.ctx, requests); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Msg("Refresher error")
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-s.ctx.Done():
					return
				case <-requests:
					s.Refresh()
				}
			}
		}()
	}

	// Main loop: run actions to completion, one at a time
	s.loop()

	s.shutdown()
	wg.Wait()
	s.loads.Wait()

	s.logger.Info().Msg("Session stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server error: %w", err)
	default:
		return nil
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case fn := <-s.actions:
			fn()
		}
	}
}

// pumpEvents forwards media events into the action queue
func (s *Session) pumpEvents(ctx context.Context) {
	events := s.events.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.logger.Debug().Str("event", ev.Kind.String()).Str("source", ev.Source).Msg("Media event")
			s.Dispatch(func() { s.ctrl.HandleEvent(ev) })
		}
	}
}

func (s *Session) shutdown() {
	if s.listener == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown error")
	}
}

// Stop ends the session. Run returns once in-flight work has finished.
func (s *Session) Stop() {
	s.cancel()
}

// Done is closed when the session stops
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Dispatch queues fn to run on the session goroutine.
// Returns false if the session has stopped.
func (s *Session) Dispatch(fn func()) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}

	select {
	case s.actions <- fn:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// LoadRemote starts loading a thread URL in the background
func (s *Session) LoadRemote(rawURL string) {
	if s.ctx.Err() != nil {
		return
	}

	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		err := s.ctrl.LoadRemote(s.ctx, rawURL)
		switch {
		case err == nil:
		case errors.Is(err, player.ErrSuperseded), errors.Is(err, context.Canceled):
			s.logger.Debug().Str("url", rawURL).Msg("Load superseded")
		default:
			s.logger.Warn().Err(err).Str("url", rawURL).Msg("Load failed")
		}
	}()
}

// LoadFiles queues loading a playlist of local files
func (s *Session) LoadFiles(files []blob.File) bool {
	return s.Dispatch(func() { s.ctrl.LoadFiles(files) })
}

// Refresh queues a reload of the current thread. The reload resolves in
// the background and keeps the position current when it lands; it is
// skipped while another load is in flight. Local playlists are not
// refreshed.
func (s *Session) Refresh() {
	s.Dispatch(s.startRefresh)
}

// startRefresh runs on the session goroutine
func (s *Session) startRefresh() {
	if s.ctx.Err() != nil {
		return
	}

	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		err := s.ctrl.Refresh(s.ctx)
		switch {
		case err == nil:
		case errors.Is(err, player.ErrNothingToRefresh):
			s.logger.Debug().Msg("Nothing to refresh")
		case errors.Is(err, player.ErrLoadPending):
			s.logger.Debug().Msg("Skipping refresh while a load is pending")
		case errors.Is(err, player.ErrSuperseded), errors.Is(err, context.Canceled):
			s.logger.Debug().Err(err).Msg("Refresh abandoned")
		default:
			s.logger.Warn().Err(err).Msg("Refresh failed")
		}
	}()
}

// Next queues a move to the following item
func (s *Session) Next() { s.Dispatch(s.ctrl.Next) }

// Prev queues a move to the preceding item
func (s *Session) Prev() { s.Dispatch(s.ctrl.Prev) }

// Toggle queues a play/pause toggle
func (s *Session) Toggle() { s.Dispatch(s.ctrl.Toggle) }

// Pause queues a pause
func (s *Session) Pause() { s.Dispatch(s.ctrl.Pause) }

// Resume queues resuming the current item
func (s *Session) Resume() {
	s.Dispatch(func() { s.ctrl.Play(s.ctrl.State().Index) })
}

// ToggleLoop queues flipping the loop flag
func (s *Session) ToggleLoop() { s.Dispatch(s.ctrl.ToggleLoop) }

// Play queues playing the item at index
func (s *Session) Play(index int) {
	s.Dispatch(func() { s.ctrl.Play(index) })
}

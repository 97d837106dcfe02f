// Package player implements the playback controller: it owns the playlist
// and the playback state and keeps the media and playlist sinks in step with
// both.
package player

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/threadplay/internal/blob"
	"github.com/jfmyers9/threadplay/internal/media"
	"github.com/jfmyers9/threadplay/internal/metrics"
	"github.com/jfmyers9/threadplay/internal/observable"
	"github.com/jfmyers9/threadplay/internal/resolver"
)

// Status messages shown through the playlist sink
const (
	StatusLoading        = "Loading..."
	StatusFetchFailed    = "Failed to get thread data, are you sure it exists?"
	StatusPlaybackFailed = "Playback failed"
)

// ErrSuperseded is returned by LoadRemote when a later load was issued
// before the resolution finished. The result was discarded.
var ErrSuperseded = errors.New("player: load superseded")

// ErrNothingToRefresh is returned by Refresh when the playlist did not
// come from a thread
var ErrNothingToRefresh = errors.New("player: nothing to refresh")

// ErrLoadPending is returned by Refresh while another remote load is
// resolving
var ErrLoadPending = errors.New("player: load pending")

// Resolver produces playlists for the controller
type Resolver interface {
	ResolveThread(ctx context.Context, rawURL string) (*resolver.Result, error)
	ResolveFiles(files []blob.File) *resolver.Result
}

// Sinks are the collaborators driven by the controller.
// Navigator and Title may be nil.
type Sinks struct {
	Media     media.Sink
	Playlist  media.PlaylistSink
	Navigator media.Navigator
	Title     media.TitleSink
}

// Controller owns the playlist and the playback state.
//
// All methods are safe for concurrent use and run to completion one at a
// time. State observers are notified synchronously while the controller is
// locked, so they may call State but nothing else on the Controller.
type Controller struct {
	mu       sync.Mutex
	sinks    Sinks
	resolver Resolver
	logger   zerolog.Logger

	state *observable.Value[State]
	items media.List
	label string

	release     func() // Frees the object URLs of items
	source      string // Source last handed to the media sink
	sourceLocal bool   // source is an object URL owned by items
	origin      string // Thread URL of items without fragment, "" for local lists
	generation  uint64 // Incremented by every load request
	pending     uint64 // Generation of the remote load in flight, 0 if none
}

// New creates a Controller with an empty playlist
func New(sinks Sinks, r Resolver, logger zerolog.Logger) *Controller {
	return &Controller{
		sinks:    sinks,
		resolver: r,
		logger:   logger.With().Str("component", "player").Logger(),
		state:    observable.New(initialState()),
	}
}

// State returns the current playback state
func (c *Controller) State() State {
	return c.state.Get()
}

// Subscribe registers fn for state changes and returns a cancel function
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	return c.state.Subscribe(fn)
}

// Label returns the collection label of the current playlist
func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// Items returns the current playlist. The returned list must not be modified.
func (c *Controller) Items() media.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Location returns the thread URL of the current item with its 1-based
// position as fragment, or "" when the playlist did not come from a thread.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.origin == "" {
		return ""
	}
	s := c.state.Get()
	if s.Total == 0 {
		return c.origin
	}
	return c.origin + "#" + strconv.Itoa(s.Position())
}

// LoadRemote resolves a thread URL and loads the result.
//
// The controller is not locked while the thread is fetched; Play, Next and
// the like keep acting on the current playlist in the meantime. If another
// load is issued before this one resolves, the result is discarded and
// ErrSuperseded is returned. Resolution failures leave the playlist and
// state untouched and surface a status message.
func (c *Controller) LoadRemote(ctx context.Context, rawURL string) error {
	c.mu.Lock()
	gen := c.begin()
	c.mu.Unlock()

	c.sinks.Playlist.ShowStatus(StatusLoading)
	return c.finishRemote(ctx, rawURL, gen, false)
}

// Refresh reloads the current thread.
//
// The start index is taken from the state when the result arrives, so
// navigation during the fetch is kept. Refresh never supersedes a load in
// flight: it returns ErrLoadPending instead. Local playlists return
// ErrNothingToRefresh.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.origin == "" {
		c.mu.Unlock()
		return ErrNothingToRefresh
	}
	if c.pending != 0 {
		c.mu.Unlock()
		return ErrLoadPending
	}
	gen := c.begin()
	origin := c.origin
	c.mu.Unlock()

	return c.finishRemote(ctx, origin, gen, true)
}

// begin starts a remote load. Must be called with c.mu held.
func (c *Controller) begin() uint64 {
	c.generation++
	c.pending = c.generation
	return c.generation
}

// finishRemote resolves rawURL and applies the result if gen is still current
func (c *Controller) finishRemote(ctx context.Context, rawURL string, gen uint64, refresh bool) error {
	source := metrics.SourceRemote
	if refresh {
		source = metrics.SourceRefresh
	}

	res, err := c.resolver.ResolveThread(ctx, rawURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		if res != nil && res.Release != nil {
			res.Release()
		}
		metrics.LoadsTotal.WithLabelValues(source, metrics.ResultSuperseded).Inc()
		c.logger.Debug().Str("url", rawURL).Msg("Discarding superseded load")
		return ErrSuperseded
	}
	c.pending = 0

	if errors.Is(err, context.Canceled) {
		c.logger.Debug().Str("url", rawURL).Msg("Load cancelled")
		return err
	}
	if err != nil {
		metrics.LoadsTotal.WithLabelValues(source, metrics.ResultFailed).Inc()
		c.logger.Error().Err(err).Str("url", rawURL).Msg("Failed to load thread")
		c.sinks.Playlist.ShowStatus(StatusFetchFailed)
		return err
	}

	if refresh {
		res.Start = resolver.StartIndex(c.state.Get().Position(), len(res.Items))
	}

	metrics.LoadsTotal.WithLabelValues(source, metrics.ResultOK).Inc()
	c.apply(res)

	origin, _, _ := strings.Cut(strings.TrimSpace(rawURL), "#")
	c.origin = origin
	return nil
}

// LoadFiles loads a playlist of local files
func (c *Controller) LoadFiles(files []blob.File) {
	c.sinks.Playlist.ShowStatus(StatusLoading)
	res := c.resolver.ResolveFiles(files)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.pending = 0
	metrics.LoadsTotal.WithLabelValues(metrics.SourceLocal, metrics.ResultOK).Inc()
	c.apply(res)
	c.origin = ""
}

// Load replaces the playlist with an already resolved result
func (c *Controller) Load(res *resolver.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.pending = 0
	c.apply(res)
	c.origin = ""
}

// apply replaces the playlist with res. Must be called with c.mu held.
func (c *Controller) apply(res *resolver.Result) {
	prev := c.state.Get()

	if c.release != nil {
		c.release()
	}
	sourceReleased := c.sourceLocal && c.release != nil
	c.release = res.Release

	c.items = res.Items
	c.label = res.Label
	metrics.PlaylistItems.Set(float64(len(c.items)))

	c.sinks.Playlist.Render(c.items.Titles(), c.items.Thumbnails(), c.label, c.Select)

	c.logger.Info().
		Str("label", c.label).
		Int("items", len(c.items)).
		Int("start", res.Start).
		Bool("local", res.Local).
		Msg("Playlist loaded")

	if len(c.items) == 0 {
		c.state.Set(func(s *State) {
			s.Index = 0
			s.Total = 0
			s.URL = ""
			s.Title = ""
			s.Paused = true
		})
		c.sinks.Media.Pause()
		c.source = ""
		c.sourceLocal = false
		c.updateTitle()
		return
	}

	start := res.Start
	if start < 0 || start >= len(c.items) {
		start = 0
	}

	if prev.Index != start {
		c.navigate(start, true)
		return
	}

	// Same item as before: refresh metadata, keep transport state
	item := c.items[start]
	c.state.Set(func(s *State) {
		s.URL = item.URL
		s.Title = item.Title
		s.Total = len(c.items)
	})
	c.sinks.Playlist.UpdateSelection(start, true)
	c.updateTitle()

	if c.source == "" || sourceReleased || (res.Local && prev.Paused) {
		c.setSource(item.URL, res.Local)
		c.sinks.Media.Load()
		if res.Local {
			c.play(start, true)
		}
	}
}

// Play plays the item at index, scrolling the playlist to it.
// Playing the current item resumes it; an out-of-range index resumes the
// current item.
func (c *Controller) Play(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.play(index, true)
}

// Select plays the item at index without scrolling the playlist.
// It is the playlist sink's selection callback.
func (c *Controller) Select(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.play(index, false)
}

func (c *Controller) play(index int, snap bool) {
	s := c.state.Get()
	if s.Total == 0 {
		return
	}

	switch {
	case index == s.Index:
		c.state.Set(func(s *State) { s.Paused = false })
		c.sinks.Media.Play()
	case index >= 0 && index < len(c.items):
		c.navigate(index, snap)
	default:
		c.logger.Debug().Int("index", index).Int("total", s.Total).Msg("Ignoring out of range index")
		c.play(s.Index, snap)
	}
}

// navigate switches to the item at index, which must be in range
func (c *Controller) navigate(index int, snap bool) {
	item := c.items[index]
	total := len(c.items)

	c.state.Set(func(s *State) {
		s.Index = index
		s.Total = total
		s.URL = item.URL
		s.Title = item.Title
		s.Paused = false
	})

	c.setSource(item.URL, c.release != nil)
	if c.sinks.Navigator != nil {
		c.sinks.Navigator.SetFragment(index + 1)
	}
	c.sinks.Playlist.UpdateSelection(index, snap)
	c.sinks.Media.Load()
	c.updateTitle()

	metrics.NavigationsTotal.Inc()
	c.logger.Debug().Int("index", index).Str("title", item.Title).Msg("Navigated")
}

func (c *Controller) setSource(url string, local bool) {
	c.sinks.Media.SetSource(url)
	c.source = url
	c.sourceLocal = local
}

// Pause pauses playback
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pause()
}

func (c *Controller) pause() {
	c.state.Set(func(s *State) { s.Paused = true })
	c.sinks.Media.Pause()
}

// Toggle resumes the current item when paused and pauses it otherwise
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state.Get()
	if s.Total == 0 {
		return
	}
	if s.Paused {
		c.play(s.Index, true)
		return
	}
	c.pause()
}

// Next plays the following item, wrapping to the first
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next()
}

func (c *Controller) next() {
	s := c.state.Get()
	if s.Index < s.Total-1 {
		c.play(s.Index+1, true)
		return
	}
	c.play(0, true)
}

// Prev plays the preceding item, wrapping to the last
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state.Get()
	if s.Index > 0 {
		c.play(s.Index-1, true)
		return
	}
	c.play(s.Total-1, true)
}

// ToggleLoop flips whether the current item repeats
func (c *Controller) ToggleLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state.Set(func(s *State) { s.Loop = !s.Loop })
	c.sinks.Media.SetLoop(s.Loop)
}

// HandleEvent applies a signal raised by the media sink.
// Events for a source other than the current one are ignored.
func (c *Controller) HandleEvent(ev media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics.MediaEventsTotal.WithLabelValues(ev.Kind.String()).Inc()

	if ev.Source != "" && ev.Source != c.source {
		c.logger.Debug().
			Str("event", ev.Kind.String()).
			Str("source", ev.Source).
			Msg("Ignoring event for stale source")
		return
	}

	switch ev.Kind {
	case media.EventReady:
		c.state.Set(func(s *State) { s.Paused = false })
		c.sinks.Media.Play()
	case media.EventCompleted:
		if !c.state.Get().Loop {
			c.next()
		}
	case media.EventFailed:
		c.logger.Error().Err(ev.Err).Str("source", ev.Source).Msg("Playback failed")
		c.sinks.Playlist.ShowStatus(StatusPlaybackFailed)
	}
}

// updateTitle pushes "<item title> - <label>" to the title sink
func (c *Controller) updateTitle() {
	if c.sinks.Title == nil {
		return
	}

	var parts []string
	if t := c.state.Get().Title; t != "" {
		parts = append(parts, t)
	}
	if c.label != "" {
		parts = append(parts, c.label)
	}
	c.sinks.Title.SetTitle(strings.Join(parts, " - "))
}

package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/threadplay/internal/blob"
	"github.com/jfmyers9/threadplay/internal/media"
	"github.com/jfmyers9/threadplay/internal/metrics"
	"github.com/jfmyers9/threadplay/pkg/enqueue"
)

// LocalLabel is the collection label of local file playlists
const LocalLabel = "Local Files"

// ErrInvalidThreadURL is returned for URLs that do not name a board and thread
var ErrInvalidThreadURL = errors.New("resolver: not a thread url")

// ErrFetchFailed matches any *FetchError via errors.Is
var ErrFetchFailed = errors.New("resolver: fetch failed")

// FetchError reports a transport, status or payload failure during remote resolution
type FetchError struct {
	Board  string
	Thread string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch /%s/thread/%s: %v", e.Board, e.Thread, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetchFailed) true for every FetchError
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// Result is a resolved playlist, ready to be applied by the controller
type Result struct {
	Items media.List
	Label string
	Start int  // Zero-based start index
	Local bool // Items are object URLs for local files

	// Release frees resources held by Items (local object URLs).
	// Nil when there is nothing to release.
	Release func()
}

// ThreadRef identifies a thread and an optional 1-based item position
type ThreadRef struct {
	Board    string
	Thread   string
	Position int // 0 when the URL carries no fragment
}

// threadPattern matches [scheme://host]/{board}/thread/{id}[/slug][#n]
var threadPattern = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*://[^/]+)?/([a-z0-9]+)/thread/(\d+)(?:/[^#?]*)?(?:\?[^#]*)?(?:#(\d+))?$`)

// ParseThreadURL extracts the board, thread id and fragment position from raw
func ParseThreadURL(raw string) (ThreadRef, error) {
	m := threadPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ThreadRef{}, fmt.Errorf("%w: %q", ErrInvalidThreadURL, raw)
	}

	ref := ThreadRef{Board: m[1], Thread: m[2]}
	if m[3] != "" {
		// Digits only, so this can only fail on overflow
		if n, err := strconv.Atoi(m[3]); err == nil {
			ref.Position = n
		}
	}
	return ref, nil
}

// StartIndex maps a 1-based position to a zero-based index into a list of
// total items. Positions outside [1, total] map to 0.
func StartIndex(position, total int) int {
	if position >= 1 && position <= total {
		return position - 1
	}
	return 0
}

// ThreadFetcher fetches a thread's playlist document
type ThreadFetcher interface {
	Thread(ctx context.Context, board, threadID string) (*enqueue.Thread, error)
}

// BoardNamer looks up board display names; "" means unknown
type BoardNamer interface {
	Name(ctx context.Context, board string) string
}

// ObjectURLs creates and revokes playable URLs for local files
type ObjectURLs interface {
	Create(f blob.File) string
	Revoke(url string) bool
}

// Resolver turns thread URLs and local file sets into playlists.
// It never touches playback state.
type Resolver struct {
	fetcher ThreadFetcher
	namer   BoardNamer
	objects ObjectURLs
	logger  zerolog.Logger
}

// New creates a Resolver. namer may be nil; objects may be nil if local
// files are never resolved.
func New(fetcher ThreadFetcher, namer BoardNamer, objects ObjectURLs, logger zerolog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		namer:   namer,
		objects: objects,
		logger:  logger.With().Str("component", "resolver").Logger(),
	}
}

// ResolveThread fetches the playlist named by rawURL.
//
// Returns an error wrapping ErrInvalidThreadURL for unparseable URLs and a
// *FetchError for transport, status or payload failures.
func (r *Resolver) ResolveThread(ctx context.Context, rawURL string) (*Result, error) {
	ref, err := ParseThreadURL(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	thread, err := r.fetcher.Thread(ctx, ref.Board, ref.Thread)
	if err != nil {
		metrics.FetchDuration.WithLabelValues(metrics.ResultFailed).Observe(time.Since(start).Seconds())
		return nil, &FetchError{Board: ref.Board, Thread: ref.Thread, Err: err}
	}
	metrics.FetchDuration.WithLabelValues(metrics.ResultOK).Observe(time.Since(start).Seconds())

	items := make(media.List, 0, len(thread.Webms))
	for _, w := range thread.Webms {
		items = append(items, media.Item{
			URL:       w.URL,
			Title:     w.Filename,
			Thumbnail: w.Thumbnail,
		})
	}

	var boardName string
	if r.namer != nil {
		boardName = r.namer.Name(ctx, ref.Board)
	}

	r.logger.Debug().
		Str("board", ref.Board).
		Str("thread", ref.Thread).
		Int("items", len(items)).
		Msg("Resolved thread")

	return &Result{
		Items: items,
		Label: threadLabel(ref.Board, thread.Subject, boardName),
		Start: StartIndex(ref.Position, len(items)),
	}, nil
}

// ResolveFiles builds a playlist from local files. It cannot fail.
func (r *Resolver) ResolveFiles(files []blob.File) *Result {
	items := make(media.List, 0, len(files))
	urls := make([]string, 0, len(files))

	for _, f := range files {
		url := r.objects.Create(f)
		urls = append(urls, url)
		items = append(items, media.Item{
			URL:   url,
			Title: f.Name(),
		})
	}

	r.logger.Debug().Int("items", len(items)).Msg("Resolved local files")

	return &Result{
		Items: items,
		Label: LocalLabel,
		Local: true,
		Release: func() {
			for _, url := range urls {
				r.objects.Revoke(url)
			}
		},
	}
}

// threadLabel joins the non-empty parts of a thread's collection label
func threadLabel(board, subject, boardName string) string {
	parts := []string{"/" + board + "/"}
	if s := strings.TrimSpace(subject); s != "" {
		parts = append(parts, s)
	}
	if boardName != "" {
		parts = append(parts, boardName)
	}
	return strings.Join(parts, " - ")
}

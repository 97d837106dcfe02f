package boards

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the public board directory
const DefaultEndpoint = "https://a.4cdn.org/boards.json"

// known covers the boards that carry video threads, so names resolve
// without network access.
var known = map[string]string{
	"a":    "Anime & Manga",
	"b":    "Random",
	"co":   "Comics & Cartoons",
	"g":    "Technology",
	"gif":  "Adult GIF",
	"k":    "Weapons",
	"mu":   "Music",
	"o":    "Auto",
	"sp":   "Sports",
	"tv":   "Television & Film",
	"v":    "Video Games",
	"vg":   "Video Game Generals",
	"wsg":  "Worksafe GIF",
	"wsr":  "Worksafe Requests",
	"x":    "Paranormal",
	"his":  "History & Humanities",
	"fit":  "Fitness",
	"diy":  "Do It Yourself",
	"trv":  "Travel",
	"out":  "Outdoors",
	"news": "Current News",
}

// Directory resolves board identifiers to display names.
//
// Lookups consult overrides, then the remote directory (fetched once and
// cached), then a built-in table. Unknown boards resolve to "".
type Directory struct {
	overrides map[string]string
	endpoint  string
	client    *http.Client
	logger    zerolog.Logger

	mu      sync.Mutex
	remote  map[string]string
	fetched bool
}

type boardsResponse struct {
	Boards []boardEntry `json:"boards"`
}

type boardEntry struct {
	Board string `json:"board"`
	Title string `json:"title"`
}

// New creates a Directory. An empty endpoint disables remote lookups.
func New(endpoint string, overrides map[string]string, logger zerolog.Logger) *Directory {
	o := make(map[string]string, len(overrides))
	for k, v := range overrides {
		o[normalize(k)] = v
	}

	return &Directory{
		overrides: o,
		endpoint:  endpoint,
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
		logger: logger.With().Str("component", "boards").Logger(),
	}
}

// Name returns the display name for board, or "" if it is unknown.
// Failures degrade to the built-in table; they are never returned.
func (d *Directory) Name(ctx context.Context, board string) string {
	board = normalize(board)
	if board == "" {
		return ""
	}

	if name, ok := d.overrides[board]; ok {
		return name
	}

	if name := d.lookupRemote(ctx, board); name != "" {
		return name
	}

	return known[board]
}

// lookupRemote returns the remote name for board, fetching the directory
// on first use. A failed fetch is not retried.
func (d *Directory) lookupRemote(ctx context.Context, board string) string {
	if d.endpoint == "" {
		return ""
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.fetched {
		d.fetched = true
		remote, err := d.fetch(ctx)
		if err != nil {
			d.logger.Debug().Err(err).Msg("Board directory unavailable, using built-in names")
		} else {
			d.remote = remote
			d.logger.Debug().Int("boards", len(remote)).Msg("Loaded board directory")
		}
	}

	return d.remote[board]
}

func (d *Directory) fetch(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var result boardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(result.Boards))
	for _, b := range result.Boards {
		if b.Board != "" && b.Title != "" {
			names[normalize(b.Board)] = b.Title
		}
	}
	return names, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "boards: unexpected status " + http.StatusText(e.code)
}

func normalize(board string) string {
	return strings.ToLower(strings.Trim(board, "/ "))
}

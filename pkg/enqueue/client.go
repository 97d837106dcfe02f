package enqueue

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Config holds client configuration.
type Config struct {
	BaseURL    string        // Required: Base URL of the enqueue server
	HTTPClient *http.Client  // Optional: HTTP client (defaults to a client with a 10s timeout)
	Logger     Logger        // Optional: Logger interface for debug logging
	Cache      Cache         // Optional: Response cache for conditional requests
	MaxRetries int           // Optional: Attempts per request (defaults to 3)
	Backoff    time.Duration // Optional: Initial retry delay (defaults to 1s)
	UserAgent  string        // Optional: User-Agent header (defaults to DefaultUserAgent)
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client fetches thread playlists from an enqueue server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     Logger
	cache      Cache
	maxRetries int
	backoff    time.Duration
	userAgent  string
}

const (
	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "threadplay/1.0"

	defaultMaxRetries = 3
	defaultBackoff    = 1 * time.Second
	defaultTimeout    = 10 * time.Second
)

// NewClient creates a new enqueue client.
//
// Returns an error wrapping ErrInvalidConfig if BaseURL is missing or not
// an absolute http(s) URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid BaseURL: %v", ErrInvalidConfig, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: BaseURL must be http or https, got %q", ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     cfg.Logger,
		cache:      cfg.Cache,
		maxRetries: maxRetries,
		backoff:    backoff,
		userAgent:  userAgent,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve makes ref absolute against the base URL.
// Returns ref unchanged if it cannot be parsed.
func (c *Client) resolve(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.baseURL.ResolveReference(u).String()
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}

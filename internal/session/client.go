package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to the control API of a running session
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the session listening at baseURL
// (e.g. "http://127.0.0.1:7451"). A nil httpClient uses a 5 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// APIError is a non-success response from the control API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("session: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("session: %s (status %d)", e.Message, e.StatusCode)
}

// State returns the session's playback state
func (c *Client) State(ctx context.Context) (*StateResponse, error) {
	var resp StateResponse
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Playlist returns the session's current playlist
func (c *Client) Playlist(ctx context.Context) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.do(ctx, http.MethodGet, "/api/playlist", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Control sends one of the Action constants
func (c *Client) Control(ctx context.Context, action string) error {
	return c.do(ctx, http.MethodPost, "/api/control/"+action, nil, nil)
}

// Play plays the item at a 1-based position
func (c *Client) Play(ctx context.Context, position int) error {
	if position < 1 {
		return fmt.Errorf("position must be at least 1, got %d", position)
	}
	return c.do(ctx, http.MethodPost, "/api/play/"+strconv.Itoa(position), nil, nil)
}

// Load asks the session to load a thread URL
func (c *Client) Load(ctx context.Context, rawURL string) error {
	body, err := json.Marshal(LoadRequest{URL: rawURL})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/load", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package enqueue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 8 << 20

// get fetches endpoint with retry logic and returns the response body.
//
// It handles:
// - Conditional requests against the configured cache
// - Retrying network errors and temporary status codes with backoff
// - Context cancellation
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var cached *CachedResponse
	if c.cache != nil {
		var err error
		cached, err = c.cache.Get(ctx, endpoint)
		if err != nil {
			// A broken cache only costs us the conditional request
			c.logDebugf("enqueue: cache lookup failed: %v", err)
			cached = nil
		}
	}

	var lastErr error
	backoff := c.backoff

	for i := 0; i < c.maxRetries; i++ {
		c.logDebugf("enqueue: GET %s (attempt %d/%d)", endpoint, i+1, c.maxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if cached != nil {
			if cached.ETag != "" {
				req.Header.Set("If-None-Match", cached.ETag)
			}
			if cached.LastModified != "" {
				req.Header.Set("If-Modified-Since", cached.LastModified)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if shouldRetryNetworkError(err) && i < c.maxRetries-1 {
				c.logDebugf("enqueue: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusNotModified && cached != nil {
			c.logDebugf("enqueue: %s not modified, using cached body", endpoint)
			return cached.Body, nil
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &Error{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				URL:        endpoint,
			}
			if apiErr.Temporary() && i < c.maxRetries-1 {
				c.logDebugf("enqueue: temporary error, retrying: %v", apiErr)
				lastErr = apiErr
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, apiErr
		}

		c.store(ctx, endpoint, resp.Header, body)

		c.logDebugf("enqueue: GET %s succeeded", endpoint)
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// store saves a response in the cache if it can be revalidated later.
func (c *Client) store(ctx context.Context, key string, header http.Header, body []byte) {
	if c.cache == nil {
		return
	}

	etag := header.Get("ETag")
	lastModified := header.Get("Last-Modified")
	if etag == "" && lastModified == "" {
		return
	}

	err := c.cache.Put(ctx, key, CachedResponse{
		ETag:         etag,
		LastModified: lastModified,
		Body:         body,
		FetchedAt:    time.Now(),
	})
	if err != nil {
		c.logDebugf("enqueue: cache store failed: %v", err)
	}
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors, including those wrapped in *url.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}

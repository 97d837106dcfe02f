package enqueue

import (
	"context"
	"time"
)

// Thread is the playlist document for a single thread.
type Thread struct {
	Subject string // Thread subject, may be empty
	Webms   []Webm // Media in posting order
}

// Webm is a single media entry of a thread.
type Webm struct {
	URL       string `json:"url"`       // Absolute media URL
	Filename  string `json:"filename"`  // Original filename
	Thumbnail string `json:"thumbnail"` // Absolute thumbnail URL, may be empty
}

// threadPayload is the wire representation of a thread document.
type threadPayload struct {
	Subject string  `json:"subject"`
	Webms   *[]Webm `json:"webms"`
}

// CachedResponse is a stored response used for conditional requests.
type CachedResponse struct {
	ETag         string
	LastModified string
	Body         []byte
	FetchedAt    time.Time
}

// Cache stores response bodies keyed by request URL.
type Cache interface {
	// Get returns the cached response for key, or nil if there is none.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	// Put stores resp under key, replacing any previous entry.
	Put(ctx context.Context, key string, resp CachedResponse) error
}

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load result labels
const (
	ResultOK         = "ok"
	ResultFailed     = "failed"
	ResultSuperseded = "superseded"
)

// Load source labels
const (
	SourceRemote  = "remote"
	SourceLocal   = "local"
	SourceRefresh = "refresh"
)

// Playlist metrics
var (
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadplay_loads_total",
			Help: "Total number of playlist loads",
		},
		[]string{"source", "result"},
	)

	NavigationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadplay_navigations_total",
			Help: "Total number of navigations to a different playlist item",
		},
	)

	PlaylistItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadplay_playlist_items",
			Help: "Number of items in the current playlist",
		},
	)

	MediaEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadplay_media_events_total",
			Help: "Total number of media sink events by kind",
		},
		[]string{"kind"},
	)
)

// Resolution metrics
var (
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadplay_fetch_duration_seconds",
			Help:    "Thread resolution duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"result"},
	)
)

// Blob metrics
var (
	BlobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadplay_blobs_active",
			Help: "Number of registered local file URLs",
		},
	)

	BlobRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadplay_blob_requests_total",
			Help: "Total number of local file requests by status",
		},
		[]string{"status"},
	)
)

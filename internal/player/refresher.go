package player

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher periodically requests a reload of the current thread location
type Refresher struct {
	location func() string
	interval time.Duration
	logger   zerolog.Logger
}

// NewRefresher creates a Refresher that reads the location to reload from
// location, usually Controller.Location
func NewRefresher(location func() string, interval time.Duration, logger zerolog.Logger) *Refresher {
	return &Refresher{
		location: location,
		interval: interval,
		logger:   logger.With().Str("component", "refresher").Logger(),
	}
}

// Run sends the current location to requests on every tick.
// Local playlists have no location and are skipped.
// Blocks until context is cancelled.
func (r *Refresher) Run(ctx context.Context, requests chan<- string) error {
	r.logger.Info().
		Dur("interval", r.interval).
		Msg("Starting refresher")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx, requests)
		}
	}
}

func (r *Refresher) tick(ctx context.Context, requests chan<- string) {
	loc := r.location()
	if loc == "" {
		r.logger.Debug().Msg("Nothing to refresh")
		return
	}

	select {
	case requests <- loc:
		r.logger.Debug().Str("location", loc).Msg("Refresh requested")
	case <-ctx.Done():
	}
}

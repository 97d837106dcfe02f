package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/threadplay/internal/boards"
	"github.com/jfmyers9/threadplay/internal/cache"
	"github.com/jfmyers9/threadplay/internal/config"
	"github.com/jfmyers9/threadplay/internal/resolver"
	"github.com/jfmyers9/threadplay/pkg/enqueue"
)

// newResolver builds the resolver and its collaborators from cfg.
// objects may be nil for commands that never resolve local files.
// The returned close function flushes and closes the thread cache.
func newResolver(cfg *config.Config, logger zerolog.Logger, objects resolver.ObjectURLs) (*resolver.Resolver, func(), error) {
	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = ":memory:"
	}

	threadCache, err := cache.New(cachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open thread cache: %w", err)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTP.Timeout) * time.Second}

	client, err := enqueue.NewClient(enqueue.Config{
		BaseURL:    cfg.Endpoint,
		HTTPClient: httpClient,
		Logger:     debugfLogger{logger: logger.With().Str("component", "enqueue").Logger()},
		Cache:      threadCache,
		MaxRetries: cfg.HTTP.Retries,
	})
	if err != nil {
		_ = threadCache.Close()
		return nil, nil, fmt.Errorf("failed to create enqueue client: %w", err)
	}

	var namer resolver.BoardNamer
	if cfg.BoardsEndpoint != "" || len(cfg.Boards) > 0 {
		namer = boards.New(cfg.BoardsEndpoint, cfg.Boards, logger)
	}

	closeFn := func() {
		if cfg.Cache.MaxAge > 0 {
			maxAge := time.Duration(cfg.Cache.MaxAge) * time.Hour
			if n, err := threadCache.Cleanup(context.Background(), maxAge); err != nil {
				logger.Warn().Err(err).Msg("Failed to clean up thread cache")
			} else if n > 0 {
				logger.Debug().Int64("removed", n).Msg("Cleaned up thread cache")
			}
		}
		if err := threadCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close thread cache")
		}
	}

	return resolver.New(client, namer, objects, logger), closeFn, nil
}

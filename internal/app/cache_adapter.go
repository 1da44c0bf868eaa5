package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/newsbrief/internal/cache"
	"github.com/deusflow/newsbrief/internal/config"
	"github.com/deusflow/newsbrief/internal/search"
)

// caches bundles the two process-wide caches behind one backend choice.
type caches struct {
	summaries cache.Cache[string]
	searches  cache.Cache[search.Response]
	close     func()
}

func newCaches(ctx context.Context, cfg *config.Config) (*caches, error) {
	if cfg.CacheBackend != "redis" {
		return &caches{
			summaries: cache.NewMemory[string](cfg.SummaryCacheTTL, nil),
			searches:  cache.NewMemory[search.Response](cfg.SearchCacheTTL, nil),
			close:     func() {},
		}, nil
	}

	client, err := cache.Connect(ctx, cache.RedisOptions{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	slog.Info("using redis cache", "address", cfg.RedisAddress)
	return &caches{
		summaries: cache.NewRedis[string](client, "newsbrief:summary", cfg.SummaryCacheTTL, nil),
		searches:  cache.NewRedis[search.Response](client, "newsbrief:search", cfg.SearchCacheTTL, nil),
		close: func() {
			if err := client.Close(); err != nil {
				slog.Warn("closing redis", "err", err)
			}
		},
	}, nil
}

// Package app wires configuration into a ready aggregator and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/deusflow/newsbrief/internal/aggregator"
	"github.com/deusflow/newsbrief/internal/config"
	"github.com/deusflow/newsbrief/internal/llm"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/ratelimit"
	"github.com/deusflow/newsbrief/internal/retry"
	"github.com/deusflow/newsbrief/internal/rss"
	"github.com/deusflow/newsbrief/internal/scraper"
	"github.com/deusflow/newsbrief/internal/search"
	"github.com/deusflow/newsbrief/internal/server"
	"github.com/deusflow/newsbrief/internal/sources"
	"github.com/deusflow/newsbrief/internal/summary"
)

// App holds the long-lived components of one process.
type App struct {
	Config     *config.Config
	Metrics    *metrics.Metrics
	Aggregator *aggregator.Aggregator
	Limiter    *ratelimit.Limiter

	closers []func()
}

// New builds every component from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Metrics: metrics.New()}

	caches, err := newCaches(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, caches.close)

	client, err := llm.New(ctx, llm.Options{
		Provider: llm.Provider(cfg.LLMProvider),
		APIKey:   cfg.LLMAPIKey(),
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("language model client: %w", err)
	}
	if g, ok := client.(*llm.GeminiClient); ok {
		a.closers = append(a.closers, g.Close)
	}
	a.Limiter = ratelimit.New(cfg.LLMRatePerSecond, cfg.LLMBurst, cfg.LLMMaxPerDay)
	summarizer := summary.New(llm.NewPaced(client, a.Limiter), caches.summaries, a.Metrics)

	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.Close()
			return nil, fmt.Errorf("load feeds: %w", err)
		}
		slog.Info("no feeds config, all sources use search", "path", cfg.FeedsConfigPath)
	}
	feedProvider := rss.NewProvider(feeds, scraper.New(cfg.RequestTimeout), cfg.ScrapeConcurrency, cfg.RequestTimeout)

	var provider search.Provider = &search.Router{
		Default: search.NewExa(cfg.ExaAPIKey, "", cfg.RequestTimeout),
		Feeds:   feedProvider,
		Handles: feedProvider.Has,
	}
	if cfg.RetryAttempts > 1 {
		provider = search.NewRetrying(provider, retry.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		})
	}
	provider = search.NewCached(provider, caches.searches)

	a.Aggregator, err = aggregator.New(provider, summarizer, a.Metrics, aggregator.Options{
		Defaults:          sources.Defaults(),
		NumResults:        cfg.SearchNumResults,
		WindowDays:        cfg.SearchWindowDays,
		MaxPerSource:      cfg.MaxArticlesPerSource,
		SourceConcurrency: cfg.SourceConcurrency,
		RequestTimeout:    cfg.RequestTimeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Server returns the HTTP surface for the app's aggregator.
func (a *App) Server() *server.Server {
	return server.New(a.Aggregator, a.Metrics, a.Config.CORSOrigins).WithBudget(a.Limiter.GetStats)
}

// Close releases clients and connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

package search

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/deusflow/newsbrief/internal/cache"
)

// Cached serves repeated requests from the search cache. Only successful
// responses are stored.
type Cached struct {
	next  Provider
	store cache.Cache[Response]
}

func NewCached(next Provider, store cache.Cache[Response]) *Cached {
	return &Cached{next: next, store: store}
}

func (c *Cached) Search(ctx context.Context, req Request) (*Response, error) {
	key := requestKey(req)
	if resp, ok := c.store.Get(ctx, key); ok {
		slog.Debug("search cache hit", "query", req.Query)
		return &resp, nil
	}

	resp, err := c.next.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	c.store.Set(ctx, key, *resp)
	return resp, nil
}

func requestKey(req Request) string {
	return cache.Key(
		strings.ToLower(strings.Join(strings.Fields(req.Query), " ")),
		strconv.Itoa(req.NumResults),
		strconv.FormatBool(req.Text),
		req.StartPublishedDate,
		strconv.FormatBool(req.UseAuthorExtraction),
		strconv.FormatBool(req.UseBodyExtraction),
		req.SortBy,
		strings.Join(req.ExcludeSites, ","),
		req.FeedURL,
	)
}

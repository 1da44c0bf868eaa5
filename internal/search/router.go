package search

import (
	"context"

	"github.com/deusflow/newsbrief/internal/query"
)

// Router sends a request to Feeds when it names a FeedURL or when Handles
// accepts the query's only site: domain, and to Default otherwise.
type Router struct {
	Default Provider
	Feeds   Provider
	Handles func(domain string) bool
}

func (r *Router) Search(ctx context.Context, req Request) (*Response, error) {
	if r.Feeds != nil && r.useFeeds(req) {
		return r.Feeds.Search(ctx, req)
	}
	return r.Default.Search(ctx, req)
}

func (r *Router) useFeeds(req Request) bool {
	if req.FeedURL != "" {
		return true
	}
	if r.Handles == nil {
		return false
	}
	domains := query.SiteDomains(req.Query)
	return len(domains) == 1 && r.Handles(domains[0])
}

// Package search is the boundary to external search providers.
package search

import (
	"context"
	"errors"

	"github.com/deusflow/newsbrief/internal/news"
)

// ErrMalformedResponse means the provider answered without a results list.
var ErrMalformedResponse = errors.New("search: malformed provider response")

// Request is one provider search.
type Request struct {
	Query               string
	NumResults          int
	Text                bool
	StartPublishedDate  string // YYYY-MM-DD
	UseAuthorExtraction bool
	UseBodyExtraction   bool
	SortBy              string
	ExcludeSites        []string

	// FeedURL pins the request to one RSS or Atom feed. Routers send such
	// requests to the feed provider regardless of the query's domain.
	FeedURL string
}

// Response holds validated results. Every result has a URL.
type Response struct {
	Results []news.RawSearchResult
}

// Provider performs a single search. Implementations do not retry.
type Provider interface {
	Search(ctx context.Context, req Request) (*Response, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (*Response, error)

func (f ProviderFunc) Search(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

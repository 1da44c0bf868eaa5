package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/news"
	"github.com/deusflow/newsbrief/internal/normalize"
	"github.com/deusflow/newsbrief/internal/query"
	"github.com/deusflow/newsbrief/internal/relevance"
	"github.com/deusflow/newsbrief/internal/search"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("aggregator: query is required")

const (
	searchResults = 20
	previewLen    = 200
	minHitBody    = 200
)

// Hit is one cross-source search match.
type Hit struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
	Summary       string `json:"summary"`
	Source        string `json:"source"`
}

// Search runs a free-text query across all default sources at once and
// returns matches newest first. Unlike Aggregate it reports provider
// failures to the caller.
func (a *Aggregator) Search(ctx context.Context, q string) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.RequestTimeout)
	defer cancel()

	resp, err := a.search.Search(ctx, search.Request{
		Query:               query.CrossSite(a.opts.Defaults, q),
		NumResults:          searchResults,
		Text:                true,
		StartPublishedDate:  a.since(),
		UseAuthorExtraction: true,
		UseBodyExtraction:   true,
	})
	if err != nil {
		a.metrics.RecordSearch(metrics.OutcomeFailure)
		return nil, fmt.Errorf("search %q: %w", q, err)
	}
	if resp == nil {
		a.metrics.RecordSearch(metrics.OutcomeFailure)
		return nil, search.ErrMalformedResponse
	}
	a.metrics.RecordSearch(metrics.OutcomeSuccess)

	type ranked struct {
		hit Hit
		r   news.RawSearchResult
	}
	var kept []ranked
	for _, r := range resp.Results {
		if r.Title == "" || r.PublishedDate == "" || relevance.IsSectionHeader(r.Title) {
			continue
		}
		if len([]rune(r.Text)) < minHitBody {
			continue
		}
		if r.Published.IsZero() {
			r.Published = news.ParsePublished(r.PublishedDate)
		}
		kept = append(kept, ranked{
			hit: Hit{
				Title:         r.Title,
				URL:           r.URL,
				PublishedDate: r.PublishedDate,
				Summary:       preview(r.Text),
				Source:        a.sourceName(r.URL),
			},
			r: r,
		})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].r.Published.After(kept[j].r.Published)
	})

	hits := make([]Hit, len(kept))
	for i, k := range kept {
		hits[i] = k.hit
	}
	return hits, nil
}

func preview(text string) string {
	cleaned := normalize.Clean(text)
	if cleaned == "" {
		cleaned = strings.Join(strings.Fields(text), " ")
	}
	r := []rune(cleaned)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r) + "..."
}

func (a *Aggregator) sourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Unknown Source"
	}
	for _, src := range a.opts.Defaults {
		if news.DomainMatches(u.Hostname(), src.Domain) {
			return src.Name
		}
	}
	return "Unknown Source"
}

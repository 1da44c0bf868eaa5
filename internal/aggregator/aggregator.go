// Package aggregator runs the per-source search, filter and summarize
// pipeline and assembles one result per source.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/news"
	"github.com/deusflow/newsbrief/internal/normalize"
	"github.com/deusflow/newsbrief/internal/query"
	"github.com/deusflow/newsbrief/internal/relevance"
	"github.com/deusflow/newsbrief/internal/rss"
	"github.com/deusflow/newsbrief/internal/search"
	"github.com/deusflow/newsbrief/internal/sources"
)

// Summarizer produces an article summary and never fails.
type Summarizer interface {
	Summarize(ctx context.Context, title, cleaned string) string
}

type Options struct {
	Defaults          []news.NewsSource
	NumResults        int
	WindowDays        int
	MaxPerSource      int
	SourceConcurrency int
	RequestTimeout    time.Duration
	Now               func() time.Time
}

func (o *Options) setDefaults() {
	if o.Defaults == nil {
		o.Defaults = sources.Defaults()
	}
	if o.NumResults <= 0 {
		o.NumResults = 10
	}
	if o.WindowDays <= 0 {
		o.WindowDays = 7
	}
	if o.MaxPerSource <= 0 || o.MaxPerSource > relevance.MaxPerSource {
		o.MaxPerSource = relevance.MaxPerSource
	}
	if o.SourceConcurrency <= 0 {
		o.SourceConcurrency = 4
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type Aggregator struct {
	search     search.Provider
	summarizer Summarizer
	metrics    *metrics.Metrics
	opts       Options
}

// New wires an Aggregator. m may be nil.
func New(provider search.Provider, summarizer Summarizer, m *metrics.Metrics, opts Options) (*Aggregator, error) {
	if provider == nil {
		return nil, errors.New("aggregator: search provider is required")
	}
	if summarizer == nil {
		return nil, errors.New("aggregator: summarizer is required")
	}
	opts.setDefaults()
	return &Aggregator{search: provider, summarizer: summarizer, metrics: m, opts: opts}, nil
}

// Aggregate returns one result per default source, in configured order,
// followed by one per resolvable custom source, in input order. Provider
// failures are reported in the affected SourceResult only.
func (a *Aggregator) Aggregate(ctx context.Context, customURLs []string, cat news.Category) []news.SourceResult {
	start := time.Now()
	log := slog.With("run_id", uuid.NewString(), "category", string(cat))

	custom := sources.Resolve(customURLs, sources.Domains(a.opts.Defaults))

	all := make([]news.NewsSource, 0, len(a.opts.Defaults)+len(custom))
	all = append(all, a.opts.Defaults...)
	all = append(all, custom...)
	log.Info("aggregation started", "sources", len(all), "custom", len(custom))

	results := make([]news.SourceResult, len(all))
	var g errgroup.Group
	g.SetLimit(a.opts.SourceConcurrency)
	for i, src := range all {
		g.Go(func() error {
			results[i] = a.processSource(ctx, log, src, cat)
			return nil
		})
	}
	_ = g.Wait()

	uniqueIDs(results)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	a.metrics.RecordProcessingTime(time.Since(start))
	if failed > 0 && failed == len(results) {
		a.metrics.SetError(fmt.Sprintf("all %d sources failed", failed))
	} else {
		a.metrics.SetLastRun()
	}
	log.Info("aggregation finished", "duration", time.Since(start), "failed", failed)
	return results
}

func (a *Aggregator) processSource(ctx context.Context, log *slog.Logger, src news.NewsSource, cat news.Category) news.SourceResult {
	label := sources.Label(src)
	log = log.With("source", label, "domain", src.Domain)

	resp, err := a.fetch(ctx, src, cat)
	if err != nil {
		log.Warn("search failed", "err", err)
		a.metrics.RecordSearch(metrics.OutcomeFailure)
		a.metrics.RecordSource(metrics.OutcomeFailure)
		return news.Failed(label, src.URL, err)
	}
	a.metrics.RecordSearch(metrics.OutcomeSuccess)

	selected := relevance.Select(resp.Results, src, cat, a.opts.MaxPerSource)
	log.Debug("results selected", "raw", len(resp.Results), "kept", len(selected))

	articles := make([]news.Article, len(selected))
	var g errgroup.Group
	for i, r := range selected {
		g.Go(func() error {
			cleaned := normalize.CleanFor(src.Domain, r.Text)
			articles[i] = news.Article{
				ID:            articleID(label, i, r.URL),
				Title:         r.Title,
				URL:           r.URL,
				Text:          cleaned,
				Summary:       a.summarizer.Summarize(ctx, r.Title, cleaned),
				PublishedDate: r.PublishedDate,
			}
			return nil
		})
	}
	_ = g.Wait()

	a.metrics.RecordSource(metrics.OutcomeSuccess)
	return news.SourceResult{Source: label, SourceURL: src.URL, Articles: articles}
}

func (a *Aggregator) fetch(ctx context.Context, src news.NewsSource, cat news.Category) (*search.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.RequestTimeout)
	defer cancel()

	req := search.Request{
		Query:               query.Build(src, cat),
		NumResults:          a.opts.NumResults,
		Text:                true,
		StartPublishedDate:  a.since(),
		UseAuthorExtraction: true,
		UseBodyExtraction:   true,
	}
	if src.Custom() && rss.LooksLikeFeed(src.URL) {
		req.FeedURL = feedURL(src.URL)
	}
	resp, err := a.search.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, search.ErrMalformedResponse
	}
	return resp, nil
}

func (a *Aggregator) since() string {
	return a.opts.Now().UTC().AddDate(0, 0, -a.opts.WindowDays).Format("2006-01-02")
}

// articleID derives "<source-slug>-<index>-<url suffix>".
func articleID(source string, index int, rawURL string) string {
	return fmt.Sprintf("%s-%d-%s", slug(source), index, urlSuffix(rawURL, 8))
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// urlSuffix returns the last n ASCII letters and digits of u.
func urlSuffix(u string, n int) string {
	out := make([]byte, 0, n)
	for i := len(u) - 1; i >= 0 && len(out) < n; i-- {
		c := u[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// uniqueIDs suffixes repeated article ids with -2, -3, ... in result order.
func uniqueIDs(results []news.SourceResult) {
	seen := make(map[string]int)
	for i := range results {
		for j := range results[i].Articles {
			id := results[i].Articles[j].ID
			seen[id]++
			if n := seen[id]; n > 1 {
				next := fmt.Sprintf("%s-%d", id, n)
				for seen[next] > 0 {
					n++
					next = fmt.Sprintf("%s-%d", id, n)
				}
				seen[next] = 1
				results[i].Articles[j].ID = next
			}
		}
	}
}

// feedURL adds the scheme the source resolver accepts implicitly.
func feedURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

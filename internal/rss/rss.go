package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsbrief/internal/news"
	"github.com/deusflow/newsbrief/internal/normalize"
	"github.com/deusflow/newsbrief/internal/query"
	"github.com/deusflow/newsbrief/internal/scraper"
	"github.com/deusflow/newsbrief/internal/search"
	"github.com/deusflow/newsbrief/internal/sources"
)

// Items with less body text than this are scraped for the full page.
const thinBody = 200

// FeedsConfig is YAML config structure
// feeds:
//
//	techcrunch.com:
//	  - https://techcrunch.com/feed/
type FeedsConfig struct {
	Feeds map[string][]string `yaml:"feeds"`
}

// LoadFeeds reads the domain to feed URL mapping from a YAML file.
func LoadFeeds(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	out := make(map[string][]string, len(cfg.Feeds))
	for domain, urls := range cfg.Feeds {
		out[sources.NormalizeDomain(domain)] = urls
	}
	return out, nil
}

// LooksLikeFeed reports whether a URL points at an RSS or Atom document.
func LooksLikeFeed(u string) bool {
	u = strings.ToLower(strings.TrimSpace(u))
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimSuffix(u, "/")
	for _, suffix := range []string{".xml", ".rss", ".atom", "/feed", "/rss", "/atom"} {
		if strings.HasSuffix(u, suffix) {
			return true
		}
	}
	return false
}

// Provider answers searches from the feed named by the request, or from
// the feeds configured for the query's site: domain. Items must mention
// one of the query's keywords.
type Provider struct {
	parser            *gofeed.Parser
	scraper           *scraper.Scraper
	scrapeConcurrency int

	// byDomain is fixed once NewProvider returns.
	byDomain map[string][]string
}

// NewProvider builds a feed provider. scr may be nil to skip scraping
// thin items.
func NewProvider(feeds map[string][]string, scr *scraper.Scraper, scrapeConcurrency int, timeout time.Duration) *Provider {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	p := &Provider{
		parser:            parser,
		scraper:           scr,
		scrapeConcurrency: scrapeConcurrency,
		byDomain:          make(map[string][]string),
	}
	for domain, urls := range feeds {
		for _, u := range urls {
			p.register(domain, u)
		}
	}
	return p
}

func (p *Provider) register(domain, feedURL string) {
	domain = sources.NormalizeDomain(domain)
	for _, existing := range p.byDomain[domain] {
		if existing == feedURL {
			return
		}
	}
	p.byDomain[domain] = append(p.byDomain[domain], feedURL)
}

// Has reports whether any feed is configured for domain.
func (p *Provider) Has(domain string) bool {
	return len(p.byDomain[sources.NormalizeDomain(domain)]) > 0
}

func (p *Provider) feedsFor(domain string) []string {
	return append([]string(nil), p.byDomain[sources.NormalizeDomain(domain)]...)
}

func (p *Provider) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	urls := []string{req.FeedURL}
	if req.FeedURL == "" {
		domain := query.SiteDomain(req.Query)
		if urls = p.feedsFor(domain); len(urls) == 0 {
			return nil, fmt.Errorf("no feeds configured for %q", domain)
		}
	}
	matches := keywordMatcher(query.Keywords(req.Query))

	var since time.Time
	if req.StartPublishedDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartPublishedDate); err == nil {
			since = t
		}
	}

	items, err := p.fetchAll(ctx, urls)
	if err != nil {
		return nil, err
	}

	results := make([]news.RawSearchResult, 0, len(items))
	for _, item := range items {
		if r, ok := toResult(item, since); ok && matches(r.Title+" "+r.Text) {
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Published.After(results[j].Published)
	})
	if req.NumResults > 0 && len(results) > req.NumResults {
		results = results[:req.NumResults]
	}

	if req.Text {
		p.fillThin(ctx, results)
	}
	return &search.Response{Results: results}, nil
}

// fetchAll downloads and parses all feeds. It fails only when every feed
// fails.
func (p *Provider) fetchAll(ctx context.Context, urls []string) ([]*gofeed.Item, error) {
	var allItems []*gofeed.Item
	var lastErr error
	successCount := 0

	for _, url := range urls {
		feed, err := p.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			slog.Warn("Error parsing RSS", "url", url, "err", err)
			lastErr = err
			continue
		}
		allItems = append(allItems, feed.Items...)
		successCount++
		slog.Debug("Loaded feed", "url", url, "items", len(feed.Items))
	}

	if successCount == 0 {
		return nil, fmt.Errorf("all %d feeds failed: %w", len(urls), lastErr)
	}
	return allItems, nil
}

func toResult(item *gofeed.Item, since time.Time) (news.RawSearchResult, bool) {
	if item == nil || strings.TrimSpace(item.Link) == "" {
		return news.RawSearchResult{}, false
	}
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published == nil || published.Before(since) {
		return news.RawSearchResult{}, false
	}

	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	return news.RawSearchResult{
		Title:         strings.TrimSpace(item.Title),
		URL:           strings.TrimSpace(item.Link),
		Text:          normalize.StripHTML(body),
		PublishedDate: published.UTC().Format(time.RFC3339),
		Published:     published.UTC(),
	}, true
}

// keywordMatcher reports whether text contains any of the keywords as a
// whole word, ignoring case. No keywords match everything.
func keywordMatcher(keywords []string) func(text string) bool {
	if len(keywords) == 0 {
		return func(string) bool { return true }
	}
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return re.MatchString
}

func (p *Provider) fillThin(ctx context.Context, results []news.RawSearchResult) {
	if p.scraper == nil {
		return
	}
	var thin []string
	for _, r := range results {
		if len(r.Text) < thinBody {
			thin = append(thin, r.URL)
		}
	}
	if len(thin) == 0 {
		return
	}
	pages := p.scraper.ExtractAll(ctx, thin, p.scrapeConcurrency)
	for i := range results {
		if page, ok := pages[results[i].URL]; ok && len(page.Content) > len(results[i].Text) {
			results[i].Text = page.Content
		}
	}
}

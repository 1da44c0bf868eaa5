package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; newsbrief/1.0)"
	maxBodySize = 5 << 20
	maxContent  = 4000
)

// ArticleContent is full article content
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// Scraper fetches article pages and extracts their readable text.
type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Extract gets full text of article by URL. Readability runs first; the
// selector table is used when it finds nothing.
func (s *Scraper) Extract(ctx context.Context, pageURL string) (*ArticleContent, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if article, err := readability.FromReader(bytes.NewReader(html), u); err == nil {
		if text := cleanContent(article.TextContent); text != "" {
			return &ArticleContent{Title: strings.TrimSpace(article.Title), Content: text, URL: pageURL}, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	content := cleanContent(extractBySelectors(doc))
	if content == "" {
		return nil, fmt.Errorf("can't get content from %s", pageURL)
	}
	return &ArticleContent{Title: extractTitle(doc), Content: content, URL: pageURL}, nil
}

// ExtractAll fetches urls with at most concurrency requests in flight.
// Pages that fail are left out of the result.
func (s *Scraper) ExtractAll(ctx context.Context, urls []string, concurrency int) map[string]*ArticleContent {
	if concurrency < 1 {
		concurrency = 1
	}
	result := make(map[string]*ArticleContent, len(urls))
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)

	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			article, err := s.Extract(ctx, u)
			if err != nil {
				slog.Debug("scrape failed", "url", u, "err", err)
				return
			}
			mu.Lock()
			result[u] = article
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return result
}

var contentSelectors = []string{
	"article p",
	".article-body p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	"p",
}

func extractBySelectors(doc *goquery.Document) string {
	var paragraphs []string
	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// extractTitle gets article title
func extractTitle(doc *goquery.Document) string {
	for _, selector := range []string{"h1", ".article-title", ".headline", "title"} {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

// cleanContent collapses whitespace and trims to whole paragraphs.
func cleanContent(content string) string {
	var paragraphs []string
	for _, p := range strings.Split(content, "\n") {
		p = strings.Join(strings.Fields(p), " ")
		if len(p) > 30 {
			paragraphs = append(paragraphs, p)
		}
	}

	var b strings.Builder
	for _, p := range paragraphs {
		if b.Len() > 0 && b.Len()+len(p) > maxContent {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	return b.String()
}

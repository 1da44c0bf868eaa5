// Package summary turns cleaned article text into a short factual summary.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deusflow/newsbrief/internal/cache"
	"github.com/deusflow/newsbrief/internal/llm"
	"github.com/deusflow/newsbrief/internal/metrics"
)

const (
	// keyPrefixLen is how much of the cleaned text goes into the cache key.
	keyPrefixLen = 500
	// maxInputLen caps the article text sent to the model.
	maxInputLen = 4000

	temperature     = 0.3
	maxOutputTokens = 150
)

const systemInstruction = `You summarize news articles.
Write exactly 2 sentences, about 50 words in total.
The first sentence states the news. The second sentence states why it matters.
Be factual and specific. Use only information from the article.
Do not hedge: never write "may", "might", "could potentially", "it is possible that" or "reportedly".
Return only the summary text.`

// Summarizer calls a language model and caches successful summaries.
type Summarizer struct {
	client  llm.Client
	cache   cache.Cache[string]
	metrics *metrics.Metrics
}

// New returns a Summarizer. m may be nil.
func New(client llm.Client, c cache.Cache[string], m *metrics.Metrics) *Summarizer {
	return &Summarizer{client: client, cache: c, metrics: m}
}

// Summarize returns a two-sentence summary of the article. It never fails:
// provider errors and empty answers produce Fallback(title). An empty
// cleaned text summarizes from the title alone.
func (s *Summarizer) Summarize(ctx context.Context, title, cleaned string) string {
	key := Key(title, cleaned)
	if v, ok := s.cache.Get(ctx, key); ok {
		slog.Debug("summary cache hit", "title", title)
		s.metrics.RecordSummary(metrics.OutcomeCache)
		return v
	}

	resp, err := s.client.Generate(ctx, llm.Request{
		SystemInstruction: systemInstruction,
		UserContent:       userContent(title, cleaned),
		MaxOutputTokens:   maxOutputTokens,
		Temperature:       temperature,
	})
	text := ""
	if err == nil {
		text = Sanitize(resp.Text)
	}
	if text == "" {
		if err == nil {
			err = llm.ErrEmptyResponse
		}
		slog.Warn("summarization failed, using fallback", "title", title, "err", err)
		s.metrics.RecordSummary(metrics.OutcomeFallback)
		return Fallback(title)
	}

	s.cache.Set(ctx, key, text)
	s.metrics.RecordSummary(metrics.OutcomeLLM)
	return text
}

// Key fingerprints an article for the summary cache.
func Key(title, cleaned string) string {
	return cache.Key(strings.TrimSpace(title), prefix(cleaned, keyPrefixLen))
}

// Fallback is the canned summary used when the model cannot answer.
func Fallback(title string) string {
	title = strings.TrimRight(strings.TrimSpace(title), ".")
	if title == "" {
		title = "Untitled"
	}
	return fmt.Sprintf("%s. This news could have significant implications for the tech industry.", title)
}

func userContent(title, cleaned string) string {
	if cleaned == "" {
		return fmt.Sprintf("Title: %s\n\nOnly the headline is available. Summarize what it reports.", title)
	}
	return fmt.Sprintf("Title: %s\n\nArticle:\n%s", title, prefix(cleaned, maxInputLen))
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

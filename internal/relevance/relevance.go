// Package relevance decides which raw search results are genuine,
// on-topic articles.
package relevance

import (
	"sort"

	"github.com/deusflow/newsbrief/internal/news"
)

// MaxPerSource caps the articles kept for one source.
const MaxPerSource = 6

// IsRelevant reports whether r passes every rule in Rules.
func IsRelevant(r news.RawSearchResult, src news.NewsSource, cat news.Category) bool {
	return Rejection(r, src, cat) == ""
}

// Rejection returns the name of the first rule that rejects r, or "".
func Rejection(r news.RawSearchResult, src news.NewsSource, cat news.Category) string {
	for _, rule := range Rules {
		if rule.Reject(r, src, cat) {
			return rule.Name
		}
	}
	return ""
}

// Select filters results, orders them newest first and keeps at most max.
// The input slice is not modified.
func Select(results []news.RawSearchResult, src news.NewsSource, cat news.Category, max int) []news.RawSearchResult {
	kept := make([]news.RawSearchResult, 0, len(results))
	for _, r := range results {
		if !IsRelevant(r, src, cat) {
			continue
		}
		if r.Published.IsZero() {
			r.Published = news.ParsePublished(r.PublishedDate)
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Published.After(kept[j].Published)
	})
	if max > 0 && len(kept) > max {
		kept = kept[:max]
	}
	return kept
}

// Package sources holds the default source list and turns user-supplied
// URLs into additional sources.
package sources

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/deusflow/newsbrief/internal/news"
)

// CustomPrefix labels results that come from user-supplied sources.
const CustomPrefix = "Custom: "

var defaults = []news.NewsSource{
	{Name: "Bloomberg", Domain: "bloomberg.com"},
	{Name: "Wall Street Journal", Domain: "wsj.com"},
	{Name: "New York Times", Domain: "nytimes.com"},
	{Name: "Associated Press", Domain: "apnews.com"},
	{Name: "Reuters", Domain: "reuters.com"},
	{Name: "TechCrunch", Domain: "techcrunch.com"},
}

// Defaults returns a copy of the configured default sources in order.
func Defaults() []news.NewsSource {
	out := make([]news.NewsSource, len(defaults))
	copy(out, defaults)
	return out
}

// Domains returns the normalized domains of srcs as a set.
func Domains(srcs []news.NewsSource) map[string]struct{} {
	set := make(map[string]struct{}, len(srcs))
	for _, s := range srcs {
		set[NormalizeDomain(s.Domain)] = struct{}{}
	}
	return set
}

// NormalizeDomain lowercases host and strips a leading "www.".
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

// Resolve converts customURLs into sources, dropping unparseable entries
// and any domain already in covered or seen earlier in the list.
func Resolve(customURLs []string, covered map[string]struct{}) []news.NewsSource {
	seen := make(map[string]struct{}, len(covered)+len(customURLs))
	for d := range covered {
		seen[d] = struct{}{}
	}

	var out []news.NewsSource
	for _, raw := range customURLs {
		domain, ok := parseDomain(raw)
		if !ok {
			slog.Debug("dropping unparseable custom source", "url", raw)
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, news.NewsSource{Name: domain, Domain: domain, URL: raw})
	}
	return out
}

// Label returns the display name for a source result.
func Label(src news.NewsSource) string {
	if src.Custom() {
		return CustomPrefix + src.Name
	}
	return src.Name
}

func parseDomain(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	domain := NormalizeDomain(u.Hostname())
	if domain == "" || !strings.Contains(domain, ".") || strings.ContainsAny(domain, " _") {
		return "", false
	}
	return domain, true
}

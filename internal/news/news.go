package news

import (
	"strings"
	"time"
)

// Category selects the keyword family used for queries and topical gating.
type Category string

const (
	Tech    Category = "TECH"
	Finance Category = "FINANCE"
)

// ParseCategory maps user input to a Category. Unknown values default to Tech.
func ParseCategory(s string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case Finance:
		return Finance
	default:
		return Tech
	}
}

// NewsSource is a site identity. URL is only set for custom sources and
// holds the string the user supplied.
type NewsSource struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	URL    string `json:"url,omitempty"`
}

// Custom reports whether the source was derived from a user URL.
func (s NewsSource) Custom() bool {
	return s.URL != ""
}

// RawSearchResult is a provider result after the boundary validation step.
// Empty strings mean the provider did not send the field.
type RawSearchResult struct {
	Title         string
	URL           string
	Text          string
	PublishedDate string
	Published     time.Time
}

// Article is a cleaned and summarized search result.
type Article struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Text          string `json:"text"`
	Summary       string `json:"summary"`
	PublishedDate string `json:"publishedDate"`
}

// SourceResult is either a success (Articles set, Error empty) or a
// failure (Articles empty, Error set).
type SourceResult struct {
	Source    string    `json:"source"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Articles  []Article `json:"articles"`
	Error     string    `json:"error,omitempty"`
}

// Failed builds the failure state for a source.
func Failed(source, sourceURL string, err error) SourceResult {
	return SourceResult{
		Source:    source,
		SourceURL: sourceURL,
		Articles:  []Article{},
		Error:     err.Error(),
	}
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParsePublished parses the date formats providers send. Invalid or empty
// input yields the Unix epoch so it sorts last.
func ParsePublished(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Unix(0, 0).UTC()
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Unix(0, 0).UTC()
}

// DomainMatches reports whether host is domain or one of its subdomains.
func DomainMatches(host, domain string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	domain = strings.ToLower(domain)
	if domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

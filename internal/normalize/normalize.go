// Package normalize turns raw article bodies into plain prose fit for
// classification and summarization.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsbrief/internal/news"
)

// MinLength is the shortest cleaned body that counts as usable content.
const MinLength = 100

// boilerplate is applied in order after whitespace has been collapsed.
var boilerplate = []*regexp.Regexp{
	// paywall
	regexp.MustCompile(`(?i)already a subscriber\?\s*(sign|log) in\.?`),
	regexp.MustCompile(`(?i)\b(sign|log) in to (continue|keep) reading[^.]*\.?`),
	regexp.MustCompile(`(?i)this (article|content|story) is (only )?(available|reserved) (to|for) (paid )?subscribers\.?`),
	regexp.MustCompile(`(?i)you have reached your (free )?(article|story) limit[^.]*\.?`),
	regexp.MustCompile(`(?i)continue reading your article with[^.]*\.?`),
	// subscription
	regexp.MustCompile(`(?i)\bsubscribe (now|today)?\s*(to|for) (continue reading|unlimited access|full access|the newsletter)[^.]*\.?`),
	regexp.MustCompile(`(?i)\bsign up for (our|the) [a-z ]*newsletter[^.]*\.?`),
	regexp.MustCompile(`(?i)\bget the [a-z ]*newsletter[^.]*\.?`),
	// share / follow / read more / related
	regexp.MustCompile(`(?i)\bshare (this|the) (article|story)\b:?`),
	regexp.MustCompile(`(?i)\bfollow (us|[a-z]+) on (twitter|x|facebook|instagram|linkedin|threads)\b\.?`),
	regexp.MustCompile(`(?i)\bread more\s*:`),
	regexp.MustCompile(`(?i)\bread more\s*(»|›|>>|\.\.\.)`),
	regexp.MustCompile(`(?i)\b(related|recommended|more) (articles|stories|coverage|content)\s*:`),
	regexp.MustCompile(`(?i)\bclick here to[^.]*\.?`),
	regexp.MustCompile(`(?i)\badvertisement\b`),
	// copyright
	regexp.MustCompile(`(?i)(copyright|©)\s*(©\s*)?\d{4}[^.]*\.?`),
	regexp.MustCompile(`(?i)all rights reserved\.?`),
}

// bodyMarkers lists, per domain, tokens that precede the real article body
// in provider text. The first marker found wins.
var bodyMarkers = map[string][]string{
	"bloomberg.com": {"Gift this article", "Listen to this article"},
}

// Clean collapses whitespace, strips boilerplate and returns "" when the
// remainder is shorter than MinLength runes.
func Clean(raw string) string {
	text := collapse(raw)
	for _, re := range boilerplate {
		text = re.ReplaceAllString(text, " ")
	}
	text = collapse(text)
	if utf8.RuneCountInString(text) < MinLength {
		return ""
	}
	return text
}

// CleanFor isolates the article body for domains with a known body marker
// and then applies Clean. Without a marker the whole text is cleaned.
func CleanFor(domain, raw string) string {
	return Clean(ExtractBody(domain, raw))
}

// ExtractBody returns the text after the domain's body marker, or raw when
// no marker applies.
func ExtractBody(domain, raw string) string {
	for d, markers := range bodyMarkers {
		if !news.DomainMatches(domain, d) {
			continue
		}
		for _, m := range markers {
			if idx := strings.Index(raw, m); idx >= 0 {
				if rest := strings.TrimSpace(raw[idx+len(m):]); rest != "" {
					return rest
				}
			}
		}
	}
	return raw
}

// StripHTML returns the visible text of an HTML fragment. Paragraph
// boundaries become blank lines.
func StripHTML(html string) string {
	if !strings.Contains(html, "<") {
		return html
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript, figure, aside").Remove()

	var paragraphs []string
	doc.Find("p, li, h1, h2, h3, blockquote").Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

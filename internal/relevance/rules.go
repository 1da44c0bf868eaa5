package relevance

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deusflow/newsbrief/internal/news"
	"github.com/deusflow/newsbrief/internal/normalize"
)

const (
	minTitleRunes = 20
	minBodyRunes  = 200
)

// Rule rejects a result when Reject returns true. Rules never panic.
type Rule struct {
	Name   string
	Reject func(r news.RawSearchResult, src news.NewsSource, cat news.Category) bool
}

// Rules is evaluated in order; the first rejecting rule decides.
var Rules = []Rule{
	{Name: "missing-fields", Reject: missingFields},
	{Name: "section-header", Reject: func(r news.RawSearchResult, _ news.NewsSource, _ news.Category) bool {
		return IsSectionHeader(r.Title)
	}},
	{Name: "thin-body", Reject: thinBody},
	{Name: "provider-boilerplate", Reject: providerBoilerplate},
	{Name: "off-topic", Reject: offTopic},
}

// headerPatterns match navigation and section chrome rather than headlines.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(the )?(latest|top|breaking|today'?s|trending|more)\s+(news|stories|headlines|updates)\b`),
	regexp.MustCompile(`(?i)^(home|homepage|news|markets?|technology|tech|business|world|politics|opinion|videos?|podcasts?|newsletters?|economy|finance|live)\s*([-|:–]|$)`),
	regexp.MustCompile(`(?i)[-|–]\s*AP News\s*$`),
	regexp.MustCompile(`(?i)^(the )?(wall street journal|new york times|bloomberg|reuters|associated press|techcrunch)(\s*[-|:].*)?$`),
	regexp.MustCompile(`(?i)^(subscribe|sign in|log in|search|menu|page \d+)\b`),
	regexp.MustCompile(`(?i)\b(news|headlines|stories) (today|this week|and updates)\s*$`),
	regexp.MustCompile(`(?i)^(stock market|markets) (today|data|news)\b`),
}

// IsSectionHeader reports whether title looks like site chrome.
func IsSectionHeader(title string) bool {
	t := strings.TrimSpace(title)
	if utf8.RuneCountInString(t) < minTitleRunes {
		return true
	}
	hasLetter, hasLower := false, false
	for _, r := range t {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				hasLower = true
			}
		}
	}
	if !hasLetter || !hasLower {
		return true
	}
	for _, re := range headerPatterns {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

func missingFields(r news.RawSearchResult, _ news.NewsSource, _ news.Category) bool {
	return strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.PublishedDate) == ""
}

func thinBody(r news.RawSearchResult, src news.NewsSource, _ news.Category) bool {
	return utf8.RuneCountInString(normalize.CleanFor(src.Domain, r.Text)) < minBodyRunes
}

// boilerplateMarkers reject a result outright when its raw text contains
// one of the domain's markers.
var boilerplateMarkers = map[string][]string{
	"bloomberg.com": {
		"Request a Demo",
		"Bloomberg Terminal Demo",
		"Before it's here, it's on the Bloomberg Terminal",
		"Bloomberg the Company & Its Products",
	},
	"wsj.com": {
		"This copy is for your personal, non-commercial use only",
		"Continue reading your article with a WSJ subscription",
	},
}

func providerBoilerplate(r news.RawSearchResult, src news.NewsSource, _ news.Category) bool {
	for domain, markers := range boilerplateMarkers {
		if !news.DomainMatches(src.Domain, domain) {
			continue
		}
		for _, m := range markers {
			if strings.Contains(r.Text, m) {
				return true
			}
		}
	}
	return false
}

// gate decides whether a result is on topic for a category.
type gate struct {
	paths []string
	title *regexp.Regexp
}

var (
	techGate = gate{
		paths: []string{"/technology", "/tech/", "/ai/", "/cybersecurity", "/crypto"},
		title: regexp.MustCompile(`(?i)\b(ai|a\.i\.|artificial intelligence|tech|technology|software|chips?|chipmakers?|semiconductors?|nvidia|apple|google|alphabet|microsoft|meta|amazon|openai|anthropic|tesla|cyber\w*|cloud|startups?|robots?|quantum|data centers?|smartphones?|apps?)\b`),
	}
	financeGate = gate{
		paths: []string{"/markets", "/economics", "/deals", "/wealth", "/finance"},
		title: regexp.MustCompile(`(?i)\b(stocks?|markets?|bonds?|yields?|fed|federal reserve|rates?|inflation|earnings|econom\w*|banks?|investors?|ipo|dollar|treasur\w*|oil|gdp|tariffs?|funds?|shares|traders?)\b`),
	}
)

// topicalGates lists the sources that need per-category gating.
var topicalGates = map[string]map[news.Category]gate{
	"bloomberg.com": {news.Tech: techGate, news.Finance: financeGate},
}

func offTopic(r news.RawSearchResult, src news.NewsSource, cat news.Category) bool {
	for domain, gates := range topicalGates {
		if !news.DomainMatches(src.Domain, domain) {
			continue
		}
		g, ok := gates[cat]
		if !ok {
			g = gates[news.Tech]
		}
		return !g.matches(r)
	}
	return false
}

func (g gate) matches(r news.RawSearchResult) bool {
	if u, err := url.Parse(r.URL); err == nil {
		p := strings.ToLower(u.Path)
		for _, seg := range g.paths {
			if strings.Contains(p, seg) {
				return true
			}
		}
	}
	return g.title != nil && g.title.MatchString(r.Title)
}

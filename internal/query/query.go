// Package query builds provider search expressions for a source and category.
package query

import (
	"fmt"
	"strings"

	"github.com/deusflow/newsbrief/internal/news"
)

var techTerms = []string{
	"technology", "tech", "AI", `"artificial intelligence"`, "software",
	"startup", "semiconductor", "chips", "cybersecurity", "cloud",
}

var financeTerms = []string{
	"markets", "stocks", "economy", "earnings", `"federal reserve"`,
	"inflation", "banking", "investing", "bonds", "IPO",
}

// override produces the site-scoped part of a query for one domain.
type override func(domain string, cat news.Category) string

// overrides holds domains whose site structure benefits from a path scope
// or an exclusion. Unlisted domains use siteOnly.
var overrides = map[string]override{
	"bloomberg.com": func(d string, _ news.Category) string {
		return "site:" + d + "/news/articles"
	},
	"apnews.com": func(d string, _ news.Category) string {
		return "site:" + d + "/article"
	},
	"wsj.com": func(d string, _ news.Category) string {
		return "site:" + d + "/articles"
	},
	"nytimes.com": func(d string, _ news.Category) string {
		return "site:" + d + " -inurl:section -inurl:interactive"
	},
	"reuters.com": func(d string, cat news.Category) string {
		if cat == news.Finance {
			return "site:" + d + "/markets"
		}
		return "site:" + d + "/technology"
	},
}

func siteOnly(domain string, _ news.Category) string {
	return "site:" + domain
}

func categoryTerms(cat news.Category) []string {
	if cat == news.Finance {
		return financeTerms
	}
	return techTerms
}

// Terms returns the keyword disjunction for a category.
func Terms(cat news.Category) string {
	return "(" + strings.Join(categoryTerms(cat), " OR ") + ")"
}

// Keywords returns the unquoted terms of the first keyword disjunction in
// q, skipping groups of site: clauses. It returns nil when q has none.
func Keywords(q string) []string {
	rest := q
	for {
		open := strings.Index(rest, "(")
		if open < 0 {
			return nil
		}
		end := strings.Index(rest[open:], ")")
		if end < 0 {
			return nil
		}
		group := rest[open+1 : open+end]
		rest = rest[open+end+1:]
		if strings.Contains(group, "site:") {
			continue
		}
		var out []string
		for _, t := range strings.Split(group, " OR ") {
			if t = strings.Trim(strings.TrimSpace(t), `"`); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
}

// Build returns "site:<domain> <terms>" for src, applying the domain
// override when one exists.
func Build(src news.NewsSource, cat news.Category) string {
	domain := strings.ToLower(strings.TrimSpace(src.Domain))
	site := siteOnly
	if o, ok := overrides[domain]; ok {
		site = o
	}
	return fmt.Sprintf("%s %s", site(domain, cat), Terms(cat))
}

// SiteDomain extracts the domain from the first site: clause of q. It
// returns "" when q has none.
func SiteDomain(q string) string {
	if domains := SiteDomains(q); len(domains) > 0 {
		return domains[0]
	}
	return ""
}

// SiteDomains returns the domain of every site: clause in q, in order.
func SiteDomains(q string) []string {
	var out []string
	for _, f := range strings.Fields(q) {
		f = strings.TrimLeft(f, "(")
		if !strings.HasPrefix(f, "site:") {
			continue
		}
		d := strings.TrimPrefix(f, "site:")
		if i := strings.IndexAny(d, "/)"); i >= 0 {
			d = d[:i]
		}
		out = append(out, strings.ToLower(d))
	}
	return out
}

// CrossSite scopes a free-text query to several domains at once.
func CrossSite(sources []news.NewsSource, q string) string {
	sites := make([]string, 0, len(sources))
	for _, s := range sources {
		sites = append(sites, "site:"+s.Domain)
	}
	return fmt.Sprintf("(%s) %s", strings.Join(sites, " OR "), strings.TrimSpace(q))
}

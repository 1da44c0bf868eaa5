package query

import (
	"strings"
	"testing"

	"github.com/deusflow/newsbrief/internal/news"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		src    news.NewsSource
		cat    news.Category
		prefix string
		terms  string
	}{
		{"default domain tech", news.NewsSource{Domain: "techcrunch.com"}, news.Tech, "site:techcrunch.com (", Terms(news.Tech)},
		{"default domain finance", news.NewsSource{Domain: "ft.com"}, news.Finance, "site:ft.com (", Terms(news.Finance)},
		{"path scoped override", news.NewsSource{Domain: "bloomberg.com"}, news.Tech, "site:bloomberg.com/news/articles (", Terms(news.Tech)},
		{"exclusion override", news.NewsSource{Domain: "nytimes.com"}, news.Finance, "site:nytimes.com -inurl:section", Terms(news.Finance)},
		{"category aware override", news.NewsSource{Domain: "reuters.com"}, news.Finance, "site:reuters.com/markets (", Terms(news.Finance)},
		{"unknown category falls back to tech", news.NewsSource{Domain: "example.org"}, news.Category("SPORTS"), "site:example.org (", Terms(news.Tech)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.src, tt.cat)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Fatalf("Build() = %q, want prefix %q", got, tt.prefix)
			}
			if !strings.HasSuffix(got, tt.terms) {
				t.Fatalf("Build() = %q, want terms %q", got, tt.terms)
			}
		})
	}
}

func TestBuildNeverPanics(t *testing.T) {
	for _, d := range []string{"", " ", "::::", "日本.jp", "a/b/c", "site:evil"} {
		got := Build(news.NewsSource{Domain: d}, news.Tech)
		if !strings.Contains(got, "site:") {
			t.Errorf("Build(%q) = %q", d, got)
		}
	}
}

func TestTermsDiffer(t *testing.T) {
	if Terms(news.Tech) == Terms(news.Finance) {
		t.Fatal("tech and finance terms must differ")
	}
	if !strings.Contains(Terms(news.Finance), "earnings") {
		t.Fatalf("finance terms = %q", Terms(news.Finance))
	}
}

func TestSiteDomain(t *testing.T) {
	cases := map[string]string{
		"site:bloomberg.com/news/articles (AI OR chips)": "bloomberg.com",
		"site:Example.com (tech)":                        "example.com",
		"(site:a.com OR site:b.com) rates":               "a.com",
		"no scope at all":                                "",
	}
	for in, want := range cases {
		if got := SiteDomain(in); got != want {
			t.Errorf("SiteDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSiteDomains(t *testing.T) {
	got := SiteDomains(CrossSite([]news.NewsSource{{Domain: "a.com"}, {Domain: "B.com"}}, "rates"))
	if len(got) != 2 || got[0] != "a.com" || got[1] != "b.com" {
		t.Fatalf("SiteDomains() = %v", got)
	}
	if got := SiteDomains("plain words"); len(got) != 0 {
		t.Fatalf("SiteDomains(no scope) = %v", got)
	}
}

func TestKeywords(t *testing.T) {
	tech := Keywords(Build(news.NewsSource{Domain: "nytimes.com"}, news.Tech))
	if len(tech) != len(techTerms) {
		t.Fatalf("Keywords(tech) = %v", tech)
	}
	if tech[3] != "artificial intelligence" {
		t.Errorf("quoted phrase not unquoted: %q", tech[3])
	}

	finance := Keywords(CrossSite([]news.NewsSource{{Domain: "a.com"}}, Terms(news.Finance)))
	if len(finance) == 0 || finance[0] != "markets" {
		t.Errorf("site group not skipped: %v", finance)
	}

	if got := Keywords("site:a.com fed rates"); got != nil {
		t.Errorf("Keywords(no group) = %v", got)
	}
}

func TestCrossSite(t *testing.T) {
	got := CrossSite([]news.NewsSource{{Domain: "a.com"}, {Domain: "b.com"}}, " fed rates ")
	if got != "(site:a.com OR site:b.com) fed rates" {
		t.Fatalf("CrossSite() = %q", got)
	}
}

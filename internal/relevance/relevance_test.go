package relevance

import (
	"fmt"
	"strings"
	"testing"

	"github.com/deusflow/newsbrief/internal/news"
)

var (
	ap        = news.NewsSource{Name: "Associated Press", Domain: "apnews.com"}
	bloomberg = news.NewsSource{Name: "Bloomberg", Domain: "bloomberg.com"}
	longBody  = strings.Repeat("The company said revenue grew sharply as demand for its products accelerated. ", 5)
)

func result(title, url, date string) news.RawSearchResult {
	return news.RawSearchResult{Title: title, URL: url, Text: longBody, PublishedDate: date}
}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name string
		r    news.RawSearchResult
		src  news.NewsSource
		cat  news.Category
		want string
	}{
		{"genuine article", result("Chipmaker shares surge after record quarter", "https://apnews.com/article/x", "2026-10-17"), ap, news.Tech, ""},
		{"missing title", result("", "https://apnews.com/article/x", "2026-10-17"), ap, news.Tech, "missing-fields"},
		{"missing date", result("Chipmaker shares surge after record quarter", "https://apnews.com/article/x", ""), ap, news.Tech, "missing-fields"},
		{"latest news header", result("Latest News", "https://apnews.com/", "2026-10-17"), ap, news.Tech, "section-header"},
		{"long latest header", result("Latest News and Updates From Around the World", "https://apnews.com/", "2026-10-17"), ap, news.Tech, "section-header"},
		{"top stories header", result("Top Stories of the day in business", "https://apnews.com/", "2026-10-17"), ap, news.Tech, "section-header"},
		{"ap boilerplate suffix", result("Technology and science coverage - AP News", "https://apnews.com/hub/technology", "2026-10-17"), ap, news.Tech, "section-header"},
		{"all caps", result("MARKETS WRAP: STOCKS CLOSE HIGHER TODAY", "https://apnews.com/article/y", "2026-10-17"), ap, news.Tech, "section-header"},
		{"short title", result("Tech Briefing", "https://apnews.com/article/y", "2026-10-17"), ap, news.Tech, "section-header"},
		{"no letters", result("2026-10-17 12:00:00 // 12345", "https://apnews.com/article/y", "2026-10-17"), ap, news.Tech, "section-header"},
		{"thin body", news.RawSearchResult{Title: "Chipmaker shares surge after record quarter", URL: "https://apnews.com/article/x", Text: "Too short.", PublishedDate: "2026-10-17"}, ap, news.Tech, "thin-body"},
		{"terminal demo", news.RawSearchResult{Title: "Nvidia unveils a new data center chip lineup", URL: "https://www.bloomberg.com/news/articles/x", Text: longBody + " Request a Demo", PublishedDate: "2026-10-17"}, bloomberg, news.Tech, "provider-boilerplate"},
		{"bloomberg on topic tech", result("Nvidia unveils a new data center chip lineup", "https://www.bloomberg.com/news/articles/x", "2026-10-17"), bloomberg, news.Tech, ""},
		{"bloomberg off topic tech", result("Wildfire forces evacuations across the region", "https://www.bloomberg.com/news/articles/x", "2026-10-17"), bloomberg, news.Tech, "off-topic"},
		{"bloomberg finance by path", result("Why everyone is talking about this one thing", "https://www.bloomberg.com/markets/articles/x", "2026-10-17"), bloomberg, news.Finance, ""},
		{"bloomberg finance by title", result("Treasury yields climb as traders price in cuts", "https://www.bloomberg.com/news/articles/x", "2026-10-17"), bloomberg, news.Finance, ""},
		{"gating is bloomberg only", result("Wildfire forces evacuations across the region", "https://apnews.com/article/z", "2026-10-17"), ap, news.Tech, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rejection(tt.r, tt.src, tt.cat)
			if got != tt.want {
				t.Fatalf("Rejection() = %q, want %q", got, tt.want)
			}
			if IsRelevant(tt.r, tt.src, tt.cat) != (tt.want == "") {
				t.Fatalf("IsRelevant disagrees with Rejection")
			}
		})
	}
}

func TestIsRelevantDeterministic(t *testing.T) {
	r := result("Chipmaker shares surge after record quarter", "https://apnews.com/article/x", "2026-10-17")
	first := IsRelevant(r, ap, news.Tech)
	for i := 0; i < 20; i++ {
		if IsRelevant(r, ap, news.Tech) != first {
			t.Fatal("IsRelevant changed its answer for identical input")
		}
	}
}

func TestIsRelevantNeverPanics(t *testing.T) {
	odd := []news.RawSearchResult{
		{},
		{URL: "%%%"},
		{Title: strings.Repeat("x", 10000), URL: "::", PublishedDate: "?"},
	}
	for _, r := range odd {
		_ = IsRelevant(r, bloomberg, news.Category("???"))
		_ = IsRelevant(r, news.NewsSource{}, news.Finance)
	}
}

func TestSelectSortsAndTruncates(t *testing.T) {
	var in []news.RawSearchResult
	for i := 1; i <= 9; i++ {
		in = append(in, result(
			fmt.Sprintf("Chipmaker shares surge after record quarter %d", i),
			fmt.Sprintf("https://apnews.com/article/%d", i),
			fmt.Sprintf("2026-10-%02d", i),
		))
	}
	in = append(in, result("Latest News", "https://apnews.com/", "2026-10-30"))
	in = append(in, result("Chipmaker shares surge with a broken date", "https://apnews.com/article/bad", "not-a-date"))

	got := Select(in, ap, news.Tech, MaxPerSource)
	if len(got) != MaxPerSource {
		t.Fatalf("len = %d, want %d", len(got), MaxPerSource)
	}
	if !strings.HasSuffix(got[0].URL, "/9") {
		t.Fatalf("newest first expected, got %s", got[0].URL)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Published.After(got[i-1].Published) {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
	if !in[0].Published.IsZero() {
		t.Fatal("Select must not mutate its input")
	}
}

func TestSelectInvalidDateSortsLast(t *testing.T) {
	in := []news.RawSearchResult{
		result("Chipmaker shares surge with a broken date", "https://apnews.com/article/bad", "garbage"),
		result("Chipmaker shares surge after record quarter", "https://apnews.com/article/ok", "2026-10-17"),
	}
	got := Select(in, ap, news.Tech, 0)
	if len(got) != 2 || got[1].URL != "https://apnews.com/article/bad" {
		t.Fatalf("invalid date should sort last: %+v", got)
	}
}

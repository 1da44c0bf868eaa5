package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deusflow/newsbrief/internal/aggregator"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/news"
)

type fakeService struct {
	gotURLs []string
	gotCat  news.Category
	hits    []aggregator.Hit
	err     error
}

func (f *fakeService) Aggregate(_ context.Context, urls []string, cat news.Category) []news.SourceResult {
	f.gotURLs, f.gotCat = urls, cat
	return []news.SourceResult{
		{Source: "Reuters", Articles: []news.Article{{ID: "reuters-0-abc", Title: "t"}}},
		news.Failed("Custom: c.com", "https://c.com/feed", errors.New("boom")),
	}
}

func (f *fakeService) Search(_ context.Context, q string) ([]aggregator.Hit, error) {
	if strings.TrimSpace(q) == "" {
		return nil, aggregator.ErrEmptyQuery
	}
	return f.hits, f.err
}

func TestNewsEndpoint(t *testing.T) {
	svc := &fakeService{}
	h := New(svc, metrics.New(), nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news?category=finance&source=https://c.com/feed&source=d.com", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotCat != news.Finance || len(svc.gotURLs) != 2 {
		t.Errorf("cat=%v urls=%v", svc.gotCat, svc.gotURLs)
	}
	var got []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1]["sourceUrl"] != "https://c.com/feed" || got[1]["error"] != "boom" {
		t.Errorf("body = %v", got)
	}
	if _, ok := got[0]["error"]; ok {
		t.Error("successful source should omit error")
	}
}

func TestSearchEndpoint(t *testing.T) {
	svc := &fakeService{hits: []aggregator.Hit{{Title: "Chip story", Source: "Reuters"}}}
	h := New(svc, nil, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"chips"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, s-maxage=60, stale-while-revalidate=120" {
		t.Errorf("Cache-Control = %q", cc)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":""}`)))
	if rec.Code != http.StatusBadRequest || rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("empty query: status=%d cc=%q", rec.Code, rec.Header().Get("Cache-Control"))
	}

	svc.err = errors.New("provider down")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"chips"}`)))
	if rec.Code != http.StatusInternalServerError || rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("provider error: status=%d cc=%q", rec.Code, rec.Header().Get("Cache-Control"))
	}
}

func TestHealthEndpoint(t *testing.T) {
	m := metrics.New()
	h := New(&fakeService{}, m, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	m.SetError("all sources failed")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rec.Code)
	}
}

func TestHealthReportsBudget(t *testing.T) {
	budget := func() map[string]interface{} {
		return map[string]interface{}{"used": 3, "denied": 0, "limit": 100}
	}
	h := New(&fakeService{}, metrics.New(), nil).WithBudget(budget).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var got struct {
		LLMBudget map[string]float64 `json:"llm_budget"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.LLMBudget["used"] != 3 || got.LLMBudget["limit"] != 100 {
		t.Errorf("llm_budget = %v", got.LLMBudget)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := New(&fakeService{}, nil, []string{"https://app.example"}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

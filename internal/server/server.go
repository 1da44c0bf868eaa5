// Package server exposes the aggregator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/deusflow/newsbrief/internal/aggregator"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/news"
)

const maxBodyBytes = 1 << 16

// Service is the part of the aggregator the HTTP layer needs.
type Service interface {
	Aggregate(ctx context.Context, customURLs []string, cat news.Category) []news.SourceResult
	Search(ctx context.Context, q string) ([]aggregator.Hit, error)
}

type Server struct {
	svc     Service
	metrics *metrics.Metrics
	origins []string
	budget  func() map[string]interface{}
}

// New builds a Server. m may be nil, in which case /health and /metrics
// are not mounted.
func New(svc Service, m *metrics.Metrics, origins []string) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{svc: svc, metrics: m, origins: origins}
}

// WithBudget adds the LLM call budget reported by stats to /health.
func (s *Server) WithBudget(stats func() map[string]interface{}) *Server {
	s.budget = stats
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	if s.metrics != nil {
		mux.HandleFunc("GET /health", s.handleHealth)
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat := news.ParseCategory(q.Get("category"))
	results := s.svc.Aggregate(r.Context(), q["source"], cat)
	writeJSON(w, http.StatusOK, results)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		w.Header().Set("Cache-Control", "no-store")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	hits, err := s.svc.Search(r.Context(), req.Query)
	if err != nil {
		w.Header().Set("Cache-Control", "no-store")
		if errors.Is(err, aggregator.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Search query is required")
			return
		}
		slog.Error("search failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to search news: "+err.Error())
		return
	}

	w.Header().Set("Cache-Control", "public, s-maxage=60, stale-while-revalidate=120")
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.metrics.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	body := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}
	if s.budget != nil {
		body["llm_budget"] = s.budget()
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

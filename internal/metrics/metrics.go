package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeLLM      = "llm"
	OutcomeCache    = "cache"
	OutcomeFallback = "fallback"
)

// Metrics holds Prometheus collectors on a private registry plus the
// health snapshot served by /health. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	searches  *prometheus.CounterVec
	summaries *prometheus.CounterVec
	sources   *prometheus.CounterVec
	duration  prometheus.Histogram

	mu sync.RWMutex

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsbrief",
			Name:      "searches_total",
			Help:      "Search provider calls by outcome.",
		}, []string{"outcome"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsbrief",
			Name:      "summaries_total",
			Help:      "Article summaries by origin (llm, cache, fallback).",
		}, []string{"outcome"}),
		sources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsbrief",
			Name:      "sources_total",
			Help:      "Per-source aggregation results by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsbrief",
			Name:      "aggregation_duration_seconds",
			Help:      "Wall time of one aggregation run.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		IsHealthy: true,
	}
	m.registry.MustRegister(m.searches, m.summaries, m.sources, m.duration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordSearch(outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSummary(outcome string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSource(outcome string) {
	if m == nil {
		return
	}
	m.sources.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
}

func (m *Metrics) SetLastRun() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"runs":                       m.ProcessingCount,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

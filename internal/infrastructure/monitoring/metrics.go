// Package monitoring provides the Prometheus collectors for the pipeline
// and HTTP surface.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Metrics holds every collector the service exposes. Collectors register
// against an injected registry so tests can build isolated instances.
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	searchesTotal            prometheus.Counter
	recommendationsTotal     prometheus.Counter
	substitutionLookupsTotal prometheus.Counter
	syntheticCandidates      prometheus.Counter
	indexedDocuments         prometheus.Gauge
	searchDuration           prometheus.Histogram
}

// NewMetrics creates all collectors against a fresh registry.
func NewMetrics(logger *zap.Logger) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		logger:   logger.Named("metrics"),
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		searchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipe_searches_total",
				Help: "Total number of recipe searches served",
			},
		),
		recommendationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipe_recommendations_total",
				Help: "Total number of recommendation requests served",
			},
		),
		substitutionLookupsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "substitution_lookups_total",
				Help: "Total number of ingredient substitution lookups",
			},
		),
		syntheticCandidates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "synthetic_candidates_total",
				Help: "Total number of synthesized recipe candidates",
			},
		),
		indexedDocuments: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexed_documents",
				Help: "Number of documents in the vector index",
			},
		),
		searchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_duration_seconds",
				Help:    "Recipe search duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),
	}
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSearch records one pipeline search with its duration.
func (m *Metrics) RecordSearch(duration time.Duration) {
	m.searchesTotal.Inc()
	m.searchDuration.Observe(duration.Seconds())
}

// RecordRecommendation records one recommendation request.
func (m *Metrics) RecordRecommendation() {
	m.recommendationsTotal.Inc()
}

// RecordSubstitutionLookup records one substitution lookup.
func (m *Metrics) RecordSubstitutionLookup() {
	m.substitutionLookupsTotal.Inc()
}

// RecordSyntheticCandidates records generated candidates.
func (m *Metrics) RecordSyntheticCandidates(n int) {
	m.syntheticCandidates.Add(float64(n))
}

// SetIndexedDocuments records the index size after the build phase.
func (m *Metrics) SetIndexedDocuments(n int) {
	m.indexedDocuments.Set(float64(n))
}

// HTTPMiddleware instruments every request with count and duration.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Package metrics exposes Prometheus metrics for the planner service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "extracurricular"

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUpstream    = "upstream_error"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GenerationDuration *prometheus.HistogramVec
	GenerationsTotal   *prometheus.CounterVec
	RateLimitRejected  *prometheus.CounterVec
	StoreOperations    *prometheus.CounterVec
	OpportunityMatches prometheus.Histogram

	httpStats httpCollectors
}

// New registers the service metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry:  reg,
		httpStats: newHTTPCollectors(reg),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating content with the language model",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"kind"}),
		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation requests by kind and outcome",
		}, []string{"kind", "outcome"}),
		RateLimitRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejected_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"window"}),
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_store_operations_total",
			Help:      "Scrape store operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OpportunityMatches: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "opportunity_matches",
			Help:      "Number of opportunities returned per search",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveGeneration records one generation call.
func (m *Metrics) ObserveGeneration(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.GenerationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RateLimited records a rejection in window.
func (m *Metrics) RateLimited(window string) {
	if m == nil {
		return
	}
	m.RateLimitRejected.WithLabelValues(window).Inc()
}

// StoreOp records a scrape store operation.
func (m *Metrics) StoreOp(op, outcome string) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(op, outcome).Inc()
}

// Matches records the size of an opportunity search result.
func (m *Metrics) Matches(n int) {
	if m == nil {
		return
	}
	m.OpportunityMatches.Observe(float64(n))
}

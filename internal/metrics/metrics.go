// Package metrics holds the Prometheus collectors for report generation.
// All methods are safe on a nil *Metrics so callers need no guards.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	reportsGenerated *prometheus.CounterVec
	reportsSkipped   *prometheus.CounterVec
	fetchFailures    *prometheus.CounterVec
	aiCalls          *prometheus.CounterVec
	aiFallbacks      *prometheus.CounterVec
	renderedPages    prometheus.Histogram
	complianceScore  *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchencheck",
			Name:      "reports_generated_total",
			Help:      "Reports persisted, by kind and origin.",
		}, []string{"kind", "origin"}),
		reportsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchencheck",
			Name:      "reports_duplicate_total",
			Help:      "Generation requests that hit an existing report.",
		}, []string{"kind", "resolution"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchencheck",
			Name:      "fetch_failures_total",
			Help:      "Backend reads that failed and were replaced by an empty collection.",
		}, []string{"collection"}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchencheck",
			Name:      "ai_calls_total",
			Help:      "Completion API calls, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchencheck",
			Name:      "ai_fallbacks_total",
			Help:      "Analyses served by the local rules, by reason.",
		}, []string{"reason"}),
		renderedPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kitchencheck",
			Name:      "rendered_pages",
			Help:      "Pages per rendered document.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		complianceScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kitchencheck",
			Name:      "compliance_score",
			Help:      "Compliance score of the most recent report per company and kind.",
		}, []string{"company", "kind"}),
	}
	m.registry.MustRegister(
		m.reportsGenerated, m.reportsSkipped, m.fetchFailures,
		m.aiCalls, m.aiFallbacks, m.renderedPages, m.complianceScore,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ReportGenerated(kind, origin string, company string, score int) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(kind, origin).Inc()
	m.complianceScore.WithLabelValues(company, kind).Set(float64(score))
}

func (m *Metrics) DuplicateReport(kind, resolution string) {
	if m == nil {
		return
	}
	m.reportsSkipped.WithLabelValues(kind, resolution).Inc()
}

func (m *Metrics) FetchFailed(collection string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(collection).Inc()
}

func (m *Metrics) AICall(provider, outcome string) {
	if m == nil {
		return
	}
	m.aiCalls.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) AIFallback(reason string) {
	if m == nil {
		return
	}
	m.aiFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) PagesRendered(n int) {
	if m == nil {
		return
	}
	m.renderedPages.Observe(float64(n))
}

// Package metrics exposes Prometheus counters for page renders and
// verification outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered by the application
type Metrics struct {
	registry     *prometheus.Registry
	PageRenders  *prometheus.CounterVec
	CheckResults *prometheus.CounterVec
	RunDuration  prometheus.Histogram
}

// New creates the collectors and registers them on a dedicated registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "testpage_page_renders_total",
			Help: "Number of dummy page render attempts by outcome",
		}, []string{"outcome"}),
		CheckResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "testpage_check_results_total",
			Help: "Number of verification check results by check and status",
		}, []string{"check", "status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "testpage_run_duration_seconds",
			Help:    "Wall time of verification runs",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.PageRenders,
		m.CheckResults,
		m.RunDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRender counts a page render; nil receivers are ignored
func (m *Metrics) ObserveRender(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.PageRenders.WithLabelValues(outcome).Inc()
}

// ObserveCheck counts a check result; nil receivers are ignored
func (m *Metrics) ObserveCheck(name, status string) {
	if m == nil {
		return
	}
	m.CheckResults.WithLabelValues(name, status).Inc()
}

// ObserveRun records the duration of a finished run; nil receivers are ignored
func (m *Metrics) ObserveRun(seconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
}

// Package metrics holds the Prometheus collectors for table runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sizetable"

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Metrics groups the collectors. The zero value is not usable; use New.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	TablesTotal     prometheus.Counter
	RemoteFallbacks *prometheus.CounterVec
	GlossaryTerms   prometheus.Gauge
	GlossaryReloads *prometheus.CounterVec
	ActiveRuns      prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Time to build the tables of one upload",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		TablesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tables_total",
				Help:      "Item tables produced",
			},
		),
		RemoteFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_fallback_total",
				Help:      "Remote translation fallbacks by result",
			},
			[]string{"result"},
		),
		GlossaryTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "glossary_terms",
				Help:      "Terms in the active glossary",
			},
		),
		GlossaryReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "glossary_reloads_total",
				Help:      "Glossary reloads by origin",
			},
			[]string{"origin"},
		),
		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Runs currently holding a slot",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.TablesTotal,
		m.RemoteFallbacks,
		m.GlossaryTerms,
		m.GlossaryReloads,
		m.ActiveRuns,
	)
	return m
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(outcome string, tables int, d time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
	m.TablesTotal.Add(float64(tables))
}

// ObserveRemote records a remote fallback attempt.
func (m *Metrics) ObserveRemote(err error) {
	if err != nil {
		m.RemoteFallbacks.WithLabelValues("failed").Inc()
		return
	}
	m.RemoteFallbacks.WithLabelValues("ok").Inc()
}

// ObserveGlossary records a glossary (re)load.
func (m *Metrics) ObserveGlossary(origin string, terms int) {
	m.GlossaryTerms.Set(float64(terms))
	m.GlossaryReloads.WithLabelValues(origin).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

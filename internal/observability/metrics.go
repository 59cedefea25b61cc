// Package observability exposes Prometheus metrics for analysis runs.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ads_insights"

// Metrics holds the collectors of one process. Each instance owns its registry,
// so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	InsightsTotal   *prometheus.CounterVec
	HypothesesTotal *prometheus.CounterVec
	RowsLoaded      prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Analysis runs by final status",
		}, []string{"status"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
		InsightsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "insights_total",
			Help:      "Scored insights by outcome (validated or rejected)",
		}, []string{"outcome"}),
		HypothesesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "hypotheses_total",
			Help:      "Scored hypotheses by outcome (validated or rejected)",
		}, []string{"outcome"}),
		RowsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "rows_loaded",
			Help:      "Rows in the currently loaded dataset",
		}),
	}
}

// ObserveStage records how long a stage took. Safe on a nil receiver.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordEvaluation(validatedInsights, rejectedInsights, validatedHyps, rejectedHyps int) {
	if m == nil {
		return
	}
	m.InsightsTotal.WithLabelValues("validated").Add(float64(validatedInsights))
	m.InsightsTotal.WithLabelValues("rejected").Add(float64(rejectedInsights))
	m.HypothesesTotal.WithLabelValues("validated").Add(float64(validatedHyps))
	m.HypothesesTotal.WithLabelValues("rejected").Add(float64(rejectedHyps))
}

func (m *Metrics) SetRowsLoaded(n int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

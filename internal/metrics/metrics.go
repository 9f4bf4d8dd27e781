// Package metrics exposes pipeline telemetry to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PriceSentinel/internal/model"
)

// Metrics holds all Prometheus collectors for the series pipeline.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal         *prometheus.CounterVec // labels: symbol, state
	FetchErrorsTotal  *prometheus.CounterVec // labels: symbol, source
	ObservationsTotal *prometheus.CounterVec // labels: symbol
	FixedTotal        *prometheus.CounterVec // labels: symbol
	DroppedTotal      *prometheus.CounterVec // labels: symbol
	VerdictRank       *prometheus.GaugeVec   // labels: symbol; 0=perfect .. 3=no_data
	VariationPct      *prometheus.GaugeVec   // labels: symbol
	RunDuration       prometheus.Histogram
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_runs_total",
			Help: "Pipeline runs by resulting render state",
		}, []string{"symbol", "state"}),
		FetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_fetch_errors_total",
			Help: "Failed raw series fetches",
		}, []string{"symbol", "source"}),
		ObservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_observations_total",
			Help: "Raw observations processed",
		}, []string{"symbol"}),
		FixedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_fixed_points_total",
			Help: "Observations that needed at least one repair",
		}, []string{"symbol"}),
		DroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_dropped_points_total",
			Help: "Observations dropped as unrepairable",
		}, []string{"symbol"}),
		VerdictRank: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricesentinel_health_verdict",
			Help: "Latest health verdict rank (0=perfect, 1=fair, 2=poor, 3=no_data)",
		}, []string{"symbol"}),
		VariationPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricesentinel_price_variation_pct",
			Help: "Latest close price variation percentage",
		}, []string{"symbol"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricesentinel_run_duration_seconds",
			Help:    "Fetch plus pipeline duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
	m.registry.MustRegister(
		m.RunsTotal, m.FetchErrorsTotal, m.ObservationsTotal, m.FixedTotal,
		m.DroppedTotal, m.VerdictRank, m.VariationPct, m.RunDuration,
	)
	return m
}

// ObserveRun records the outcome of one pipeline run. Safe on a nil receiver.
func (m *Metrics) ObserveRun(symbol, state string, d model.Diagnostics, stats model.RepairStats, verdict model.Verdict, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(symbol, state).Inc()
	m.ObservationsTotal.WithLabelValues(symbol).Add(float64(stats.Raw))
	m.FixedTotal.WithLabelValues(symbol).Add(float64(stats.Fixed))
	m.DroppedTotal.WithLabelValues(symbol).Add(float64(stats.Dropped))
	m.VerdictRank.WithLabelValues(symbol).Set(float64(verdict.Rank()))
	m.VariationPct.WithLabelValues(symbol).Set(d.VariationPct)
	m.RunDuration.Observe(elapsed.Seconds())
}

// ObserveFetchError counts a failed fetch. Safe on a nil receiver.
func (m *Metrics) ObserveFetchError(symbol, source string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(symbol, source).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes simulation counters through a private Prometheus
// registry. The CLI dumps it to a node-exporter textfile, the server serves
// it on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Higerald/OptionPricing/internal/model"
)

const namespace = "option_pricer"

// Metrics groups the collectors of one process.
type Metrics struct {
	Registry *prometheus.Registry

	runs          *prometheus.CounterVec
	paths         *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	standardError *prometheus.GaugeVec
	lastPrice     *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Simulation runs by generator and outcome.",
		}, []string{"generator", "outcome"}),
		paths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paths_total",
			Help:      "Simulated paths by generator.",
		}, []string{"generator"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of successful runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"generator"}),
		standardError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_standard_error",
			Help:      "Standard error of the most recent run.",
		}, []string{"generator", "option_type"}),
		lastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_price",
			Help:      "Discounted price of the most recent run.",
		}, []string{"generator", "option_type"}),
	}
	m.Registry.MustRegister(m.runs, m.paths, m.duration, m.standardError, m.lastPrice)
	return m
}

// Observe records a finished run. Records carrying an error only count as
// failures.
func (m *Metrics) Observe(r model.Record) {
	if r.Error != "" {
		m.runs.WithLabelValues(r.Generator, "error").Inc()
		return
	}
	m.runs.WithLabelValues(r.Generator, "ok").Inc()
	m.paths.WithLabelValues(r.Generator).Add(float64(r.Paths))
	m.duration.WithLabelValues(r.Generator).Observe(r.Duration.Seconds())
	m.standardError.WithLabelValues(r.Generator, r.OptionType).Set(r.StandardError)
	m.lastPrice.WithLabelValues(r.Generator, r.OptionType).Set(r.Price)
}

// WriteTextfile dumps the registry in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

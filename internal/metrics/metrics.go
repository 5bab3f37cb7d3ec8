// Package metrics exposes Prometheus collectors for the conversion pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-timeline/internal/config"
)

// Metrics groups the collectors on a private registry so tests can build as
// many instances as they need. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rows          *prometheus.CounterVec
	conversions   *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	lastSuccessTS prometheus.Gauge
	events        prometheus.Gauge
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "rows_total",
			Help:      "Candidate rows processed, by result",
		}, []string{"result"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "conversions_total",
			Help:      "Document conversions, by source and result",
		}, []string{"source", "result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Name:      "sync_duration_seconds",
			Help:      "Time spent fetching and converting the source file",
			Buckets:   prometheus.DefBuckets,
		}),
		lastSuccessTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful synchronization",
		}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "events",
			Help:      "Number of events in the currently served document",
		}),
	}

	m.registry.MustRegister(
		m.rows, m.conversions, m.syncDuration, m.lastSuccessTS, m.events,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry returns the private registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRows counts accepted and rejected candidate rows.
func (m *Metrics) ObserveRows(accepted, rejected int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(config.ResultAccepted).Add(float64(accepted))
	m.rows.WithLabelValues(config.ResultRejected).Add(float64(rejected))
}

// ObserveConversion counts one conversion attempt from source.
func (m *Metrics) ObserveConversion(source string, err error) {
	if m == nil {
		return
	}
	result := config.ResultSuccess
	if err != nil {
		result = config.ResultFailure
	}
	m.conversions.WithLabelValues(source, result).Inc()
}

// ObserveSync records a finished synchronization run.
func (m *Metrics) ObserveSync(started, finished time.Time, events int, err error) {
	if m == nil {
		return
	}
	m.syncDuration.Observe(finished.Sub(started).Seconds())
	if err != nil {
		return
	}
	m.lastSuccessTS.Set(float64(finished.Unix()))
	m.events.Set(float64(events))
}

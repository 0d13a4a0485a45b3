// Package metrics exposes Prometheus collectors for ingestion, view building
// and the HTTP surfaces.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchmetrics"

// Manager owns the collectors registered on one registry.
type Manager struct {
	registry *prometheus.Registry

	matchesIngested prometheus.Counter
	ingestErrors    prometheus.Counter
	unknownLabels   *prometheus.CounterVec
	malformedRows   prometheus.Counter
	viewBuilds      *prometheus.CounterVec
	viewErrors      *prometheus.CounterVec
	viewLatency     *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	wsClients       prometheus.Gauge
}

// NewManager registers every collector on a fresh registry, so the default Go
// runtime collectors stay out of the output.
func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	m := &Manager{registry: reg}

	m.matchesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "matches_total",
		Help:      "Match files parsed and stored in the catalog.",
	})
	m.ingestErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "errors_total",
		Help:      "Match files rejected at ingestion.",
	})
	m.unknownLabels = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "unknown_labels_total",
		Help:      "Event rows whose code label is not recognised.",
	}, []string{"label"})
	m.malformedRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "malformed_rows_total",
		Help:      "Event rows with non-numeric period, minute or coordinates.",
	})
	m.viewBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "views",
		Name:      "builds_total",
		Help:      "Views built, by view name.",
	}, []string{"view"})
	m.viewErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "views",
		Name:      "errors_total",
		Help:      "Views that could not be built, by view name.",
	}, []string{"view"})
	m.viewLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "views",
		Name:      "build_duration_seconds",
		Help:      "Time to build a match report.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
	}, []string{"source"})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status_code"})
	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "websocket_clients",
		Help:      "Connected websocket clients.",
	})
	return m
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordIngest counts one stored match with its data-quality figures.
func (m *Manager) RecordIngest(unknown map[string]int, malformed int) {
	m.matchesIngested.Inc()
	for label, n := range unknown {
		m.unknownLabels.WithLabelValues(label).Add(float64(n))
	}
	if malformed > 0 {
		m.malformedRows.Add(float64(malformed))
	}
}

func (m *Manager) RecordIngestError() { m.ingestErrors.Inc() }

// RecordReport counts the views of one report. failed lists the views that
// could not be built.
func (m *Manager) RecordReport(source string, views []string, failed map[string]string, took time.Duration) {
	for _, v := range views {
		if _, bad := failed[v]; bad {
			m.viewErrors.WithLabelValues(v).Inc()
			continue
		}
		m.viewBuilds.WithLabelValues(v).Inc()
	}
	m.viewLatency.WithLabelValues(source).Observe(took.Seconds())
}

func (m *Manager) RecordHTTP(route, method, status string, took time.Duration) {
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(took.Seconds())
}

func (m *Manager) SetWebsocketClients(n int) { m.wsClients.Set(float64(n)) }

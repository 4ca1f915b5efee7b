// Package monitoring provides Prometheus metrics for the console service.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogEntries   prometheus.Gauge
	InstalledModules prometheus.Gauge
	RefreshesTotal   prometheus.Counter
	RefreshFailures  prometheus.Counter

	// WebSocket metrics
	WSConnections       prometheus.Gauge
	ActiveSubscriptions prometheus.Gauge
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		CatalogEntries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_store_catalog_entries",
				Help: "Number of entries in the cached store catalog",
			},
		),
		InstalledModules: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_installed_modules",
				Help: "Number of installed modules",
			},
		),
		RefreshesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_store_refreshes_total",
				Help: "Total number of store catalog refresh attempts",
			},
		),
		RefreshFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_store_refresh_failures_total",
				Help: "Total number of failed store catalog refreshes",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_ws_connections",
				Help: "Number of open console WebSocket connections",
			},
		),
		ActiveSubscriptions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_store_info_subscriptions",
				Help: "Number of active store info subscriptions",
			},
		),
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Package metrics exposes the Prometheus instruments shared by the site,
// the admin API, the content resolver and the widget registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const MetricsNamespace = "showcase"

// Metrics holds every instrument. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ContentResolutions  *prometheus.CounterVec
	WidgetRendersTotal  *prometheus.CounterVec
	WidgetPlaceholders  *prometheus.CounterVec
	ImageUploadsTotal   *prometheus.CounterVec
	CommandsTotal       *prometheus.CounterVec
	gatherer            prometheus.Gatherer
}

// NewMetrics registers the instruments on reg. A nil registry gets a fresh
// one so tests do not collide on the global default.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route"},
	)
	m.ContentResolutions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "content",
			Name:      "resolutions_total",
			Help:      "Content resolutions by the source that answered",
		},
		[]string{"source"},
	)
	m.WidgetRendersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "widgets",
			Name:      "renders_total",
			Help:      "Widget renders by kind",
		},
		[]string{"kind"},
	)
	m.WidgetPlaceholders = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "widgets",
			Name:      "placeholders_total",
			Help:      "Widget renders that degraded to a placeholder",
		},
		[]string{"kind", "reason"},
	)
	m.ImageUploadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Image uploads by origin",
		},
		[]string{"origin"},
	)
	m.CommandsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "commands",
			Name:      "executions_total",
			Help:      "Command executions by message type and outcome",
		},
		[]string{"command", "outcome"},
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveResolution counts a resolver answer from source.
func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.ContentResolutions.WithLabelValues(source).Inc()
}

// ObserveWidget counts a widget render. A non-empty reason marks a placeholder.
func (m *Metrics) ObserveWidget(kind, reason string) {
	if m == nil {
		return
	}
	m.WidgetRendersTotal.WithLabelValues(kind).Inc()
	if reason != "" {
		m.WidgetPlaceholders.WithLabelValues(kind, reason).Inc()
	}
}

// ObserveUpload counts a stored image. origin is "upload" or "remote".
func (m *Metrics) ObserveUpload(origin string) {
	if m == nil {
		return
	}
	m.ImageUploadsTotal.WithLabelValues(origin).Inc()
}

// ObserveCommand counts one command execution.
func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

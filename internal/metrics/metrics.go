// Package metrics provides Prometheus metrics for the workspace server and client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "quill"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPPanicsTotal counts handler panics caught by the recovery middleware.
	HTTPPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Total handler panics recovered",
		},
		[]string{"method"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Auth metrics
var (
	// AuthAttemptsTotal counts bearer token checks.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total authentication attempts",
		},
		[]string{"result"}, // success, missing, invalid
	)
)

// Content metrics
var (
	// ContentSavesTotal counts content writes received by the server.
	ContentSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "saves_total",
			Help:      "Total content saves by target and outcome",
		},
		[]string{"target", "result"}, // target: draft, file; result: applied, superseded, error
	)

	// PublishTotal counts publish requests.
	PublishTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "publish_total",
			Help:      "Total projects published",
		},
	)
)

// Session metrics, recorded by the workspace client
var (
	// SessionTransitionsTotal counts session state changes by destination state.
	SessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Total session state transitions",
		},
		[]string{"state"},
	)

	// SessionStaleResultsTotal counts load results discarded because a newer open started.
	SessionStaleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "stale_results_total",
			Help:      "Total load results discarded as stale",
		},
	)

	// AutosaveTotal counts autosave attempts by outcome.
	AutosaveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "saves_total",
			Help:      "Total autosave attempts",
		},
		[]string{"result"}, // saved, superseded, failed, stale
	)

	// AutosaveInFlight tracks save calls that have not completed.
	AutosaveInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "in_flight",
			Help:      "Number of autosave calls currently in flight",
		},
	)
)

// Chat metrics
var (
	// ChatMessagesSentTotal counts chat sends.
	ChatMessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_sent_total",
			Help:      "Total chat messages sent",
		},
		[]string{"side"}, // server, client
	)

	// ChatReloadsTotal counts chat list reloads.
	ChatReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "reloads_total",
			Help:      "Total chat list reloads",
		},
		[]string{"result"}, // ok, error, stale, throttled
	)
)

// Info metric
var (
	// BuildInfo exposes build information.
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "environment"},
	)
)

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, environment string) {
	BuildInfo.WithLabelValues(version, environment).Set(1)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookwatch"

var FramesReceived = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_received_total",
		Help:      "Frames read from the market channel or resync poller.",
	},
)

var DecodeErrors = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decode_errors_total",
		Help:      "Frames dropped because they were not valid JSON.",
	},
)

// EventsApplied is labelled by kind: snapshot, delta, untracked, no_change, ignored.
var EventsApplied = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Decoded frame events by outcome.",
	},
	[]string{"kind"},
)

var Reconnects = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconnects_total",
		Help:      "Transitions from a failed connection into backoff.",
	},
)

// SessionState is 1 for the current session state and 0 for the others.
var SessionState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_state",
		Help:      "Current streaming session state.",
	},
	[]string{"state"},
)

var BackoffSeconds = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backoff_seconds",
		Help:      "Delay of the most recent reconnect backoff.",
	},
)

var QueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "frame_queue_depth",
		Help:      "Frames waiting for the router.",
	},
)

// ArchiveRows is labelled by result: written, failed.
var ArchiveRows = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_rows_total",
		Help:      "Top-of-book rows handed to the archive.",
	},
	[]string{"result"},
)

// SessionStates lists every label value used by SessionState.
var SessionStates = []string{"connecting", "streaming", "backoff"}

// SetSessionState marks state as current.
func SetSessionState(state string) {
	for _, s := range SessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		SessionState.WithLabelValues(s).Set(v)
	}
}

// NewRegistry returns a registry holding every bookwatch collector plus the
// Go runtime collector.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		FramesReceived,
		DecodeErrors,
		EventsApplied,
		Reconnects,
		SessionState,
		BackoffSeconds,
		QueueDepth,
		ArchiveRows,
		collectors.NewGoCollector(),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

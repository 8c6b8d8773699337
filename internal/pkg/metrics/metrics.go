// Package metrics exposes prometheus collectors for the validation server.
package metrics

import (
	"sync"

	"ssvp/internal/pkg/wire"

	"github.com/prometheus/client_golang/prometheus"
)

// Session outcome labels for ssvp_sessions_total.
const (
	OutcomeCompleted        = "completed"
	OutcomeRejectedSequence = "rejected_sequence"
	OutcomeRejectedTimeout  = "rejected_timeout"
	OutcomeIdleTimeout      = "idle_timeout"
	OutcomeMalformed        = "malformed"
	OutcomeAborted          = "aborted"
)

var (
	registerOnce sync.Once

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ssvp",
			Name:      "sessions_active",
			Help:      "Sessions currently open.",
		},
	)
	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssvp",
			Name:      "sessions_total",
			Help:      "Sessions closed, by outcome.",
		},
		[]string{"outcome"},
	)
	responsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssvp",
			Name:      "responses_total",
			Help:      "Responses written, by protocol code.",
		},
		[]string{"code"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(sessionsActive, sessionsTotal, responsesTotal)
	})
}

func SessionOpened() {
	RegisterMetrics()
	sessionsActive.Inc()
}

func SessionClosed(outcome string) {
	RegisterMetrics()
	sessionsActive.Dec()
	sessionsTotal.WithLabelValues(outcome).Inc()
}

func RecordResponse(code wire.Code) {
	RegisterMetrics()
	responsesTotal.WithLabelValues(code.String()).Inc()
}

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProcedureCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_procedure_calls_total",
			Help: "Total number of RPC procedure calls",
		},
		[]string{"router", "procedure", "kind", "outcome"},
	)

	ProcedureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_procedure_duration_seconds",
			Help:    "RPC procedure duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"router", "procedure"},
	)

	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connected_clients",
			Help: "Current number of WebSocket clients connected to the hub",
		},
	)

	RealtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Envelopes handled by the real-time hub",
		},
		[]string{"type", "source"},
	)

	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Mutation events that could not be published",
		},
	)
)

package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bellhop"

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "sessions_active",
		Help:      "Sessions currently in the Active state.",
	})

	framesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "frames_received_total",
		Help:      "Inbound frames processed across all sessions.",
	})

	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "frames_sent_total",
		Help:      "Outbound frames written across all sessions.",
	})

	bytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "bytes_received_total",
		Help:      "Raw bytes read from the transport.",
	})

	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "bytes_sent_total",
		Help:      "Raw bytes written to the transport.",
	})

	handshakeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "handshake_failures_total",
		Help:      "Key exchanges rejected or timed out.",
	})

	authFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "auth_failures_total",
		Help:      "Identity sequences the server refused.",
	})

	unknownHeaders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "unknown_headers_total",
		Help:      "Inbound frames with header IDs absent from the registry.",
	})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "events_dropped_total",
		Help:      "Caller-facing events dropped because the event channel was full.",
	})

	walksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "walks_issued_total",
		Help:      "Movement commands sent, random walk included.",
	})
)

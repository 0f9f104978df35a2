package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookEvents counts processed Stripe webhook deliveries by event type and
// outcome (handled, ignored, duplicate, rejected, error).
var WebhookEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: "quizzq",
		Name:      "webhook_events_total",
		Help:      "Stripe webhook deliveries by event type and outcome",
	},
	[]string{"type", "outcome"},
)

// GateDecisions counts PRO-gate outcomes (allowed, unauthenticated, not_pro, expired).
var GateDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: "quizzq",
		Name:      "gate_decisions_total",
		Help:      "Entitlement gate decisions by outcome",
	},
	[]string{"outcome"},
)

// HTTPRequests counts requests by method and status class.
var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: "quizzq",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status",
	},
	[]string{"method", "status"},
)

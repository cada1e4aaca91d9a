package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat messages handled",
		},
		[]string{"intent", "user_type"},
	)

	ChatRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_request_errors_total",
			Help: "Total number of chat requests rejected or failed",
		},
		[]string{"code"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_request_duration_seconds",
			Help: "Duration of chat message handling in seconds",
		},
		[]string{"intent"},
	)

	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Number of live conversations in the store",
		},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of webhook events by type and outcome",
		},
		[]string{"event_type", "status"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "codrift", Name: "document_saves_total", Help: "Number of document content saves by outcome."},
		[]string{"outcome"},
	)
	VersionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "codrift", Name: "versions_created_total", Help: "Number of version snapshots by trigger."},
		[]string{"trigger"},
	)
	NotificationsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "codrift", Name: "notifications_emitted_total", Help: "Number of notifications emitted by type."},
		[]string{"type"},
	)
	PresenceHeartbeats = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "codrift", Name: "presence_heartbeats_total", Help: "Number of presence heartbeats written."},
	)
	RealtimeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "codrift", Name: "realtime_subscribers", Help: "Currently attached realtime subscribers."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "codrift", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "codrift", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		DocumentSaves,
		VersionsCreated,
		NotificationsEmitted,
		PresenceHeartbeats,
		RealtimeSubscribers,
		RateLimitAllowed,
		RateLimitRejected,
	)
}

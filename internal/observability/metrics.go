// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SignupsTotal counts signup attempts by result.
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of signup attempts by result",
	}, []string{"result"})

	// AuthenticationsTotal counts login attempts by result.
	AuthenticationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_authentications_total",
		Help: "Total number of authentication attempts by result",
	}, []string{"result"})

	// LikeEventsTotal counts like and unlike actions.
	LikeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_like_events_total",
		Help: "Total number of like graph mutations by action",
	}, []string{"action"})

	// MessageDeletesTotal counts message delete attempts by outcome.
	MessageDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_message_deletes_total",
		Help: "Total number of message delete attempts by outcome",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

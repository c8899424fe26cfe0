// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReactionTransitions counts vote ledger mutations by target kind and transition.
	ReactionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyglot_reaction_transitions_total",
		Help: "Vote ledger transitions by target kind and transition",
	}, []string{"target", "transition"})

	// ReactionFailures counts rejected or failed vote requests by error code.
	ReactionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyglot_reaction_failures_total",
		Help: "Vote requests that did not complete, by error code",
	}, []string{"code"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyglot_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by key family and outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyglot_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})

	// DatabaseQueryLatency records service-level query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polyglot_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// EventsPublished counts forum events published to Redis by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyglot_events_published_total",
		Help: "Forum events published by type and result",
	}, []string{"type", "result"})
)

// TrackQuery returns a function that records the elapsed time for operation when called.
func TrackQuery(operation string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcrimes_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodcrimes_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ModerationActions counts moderation operations by action and outcome.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcrimes_moderation_actions_total",
		Help: "Total moderation operations by action and outcome",
	}, []string{"action", "outcome"})

	// DuplicateMatches counts duplicate-check hits by catalog.
	DuplicateMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcrimes_duplicate_matches_total",
		Help: "Total words flagged as already present, by catalog",
	}, []string{"list"})

	// DailyImageRuns counts daily image job runs by outcome.
	DailyImageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcrimes_daily_image_runs_total",
		Help: "Total daily image job runs by outcome",
	}, []string{"outcome"})

	// DailyImageStageDuration records the duration of each job stage.
	DailyImageStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodcrimes_daily_image_stage_seconds",
		Help:    "Daily image job stage duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	// DailyImageBytes records the size of uploaded daily images.
	DailyImageBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodcrimes_daily_image_bytes",
		Help:    "Size of uploaded daily images in bytes",
		Buckets: prometheus.ExponentialBuckets(64*1024, 2, 8),
	})

	// EventsPublished counts pub/sub events by type and result.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcrimes_events_published_total",
		Help: "Total events published to Redis by type and result",
	}, []string{"event_type", "result"})

	// WebSocketConnectionsTotal is the gauge of connected admin feed clients.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodcrimes_websocket_connections_total",
		Help: "Total number of active admin feed WebSocket connections",
	})

	// WebSocketBackpressureDrops counts feed messages dropped due to full or closed client buffers.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcrimes_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackStage returns a function that records a job stage duration when called.
func TrackStage(stage string) func() {
	start := time.Now()
	return func() {
		DailyImageStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// RecordModeration increments the moderation counter for action; a nil err counts as success.
func RecordModeration(action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ModerationActions.WithLabelValues(action, outcome).Inc()
}

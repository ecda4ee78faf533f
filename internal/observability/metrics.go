package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campus_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LoginAttempts counts login attempts by outcome (success, failure, locked).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// AccountLockouts counts lockout transitions.
	AccountLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_account_lockouts_total",
		Help: "Total number of automatic account lockouts",
	})

	// VisibilityDecisions counts visibility filter decisions by outcome.
	VisibilityDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_visibility_decisions_total",
		Help: "Total number of visibility filter decisions by outcome",
	}, []string{"outcome"})

	// ScopeDenials counts moderator actions rejected as out of scope.
	ScopeDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_scope_denials_total",
		Help: "Total number of moderator actions rejected as out of scope",
	})

	// EditLockContention counts lock acquires rejected because another
	// user holds the lock.
	EditLockContention = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_edit_lock_contention_total",
		Help: "Total number of edit lock acquires lost to another holder",
	})

	// NotificationConnections is the gauge of active notification
	// websocket connections.
	NotificationConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campus_notification_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// NotificationsDelivered counts notification events pushed to clients.
	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_notifications_delivered_total",
		Help: "Total number of notification events delivered by type",
	}, []string{"event_type"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

package observability

import (
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Operation names used as metric labels.
const (
	OpSetSalary  = "set_salary"
	OpAddItem    = "add_item"
	OpRemoveItem = "remove_item"
	OpUpdateItem = "update_item"
	OpSnapshot   = "snapshot"
	OpState      = "state"
	OpChart      = "chart"
)

var trackedOperations = []string{
	OpSetSalary, OpAddItem, OpRemoveItem, OpUpdateItem, OpSnapshot, OpState, OpChart,
}

// Metrics holds all Prometheus metrics for the budget service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	operations      *prometheus.CounterVec
	sessionsCreated prometheus.Counter
	activeSessions  prometheus.Gauge
	sessionLookups  *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	chartsRendered  *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_operation_duration_seconds",
				Help:    "Duration of budget operations.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"operation"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_operations_total",
				Help: "Total budget operations by kind.",
			},
			[]string{"operation"},
		),
		sessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_sessions_created_total",
				Help: "Total budget sessions started.",
			},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "budget_sessions_active",
				Help: "Budget sessions currently held in memory.",
			},
		),
		sessionLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_session_lookups_total",
				Help: "Session lookups by result (hit, miss).",
			},
			[]string{"result"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_notifications_total",
				Help: "Snapshot notifications by status (delivered, failed).",
			},
			[]string{"status"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_external_errors_total",
				Help: "Total errors from external subscribers.",
			},
			[]string{"service"},
		),
		chartsRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_charts_rendered_total",
				Help: "Charts rendered by format.",
			},
			[]string{"format"},
		),
	}
}

// RecordOperation counts an operation and records its duration.
func (m *Metrics) RecordOperation(operation string, d time.Duration) {
	m.operations.WithLabelValues(operation).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SessionStarted counts a new session.
func (m *Metrics) SessionStarted() {
	m.sessionsCreated.Inc()
	m.activeSessions.Inc()
}

// SessionEnded is called when a session expires or is deleted.
func (m *Metrics) SessionEnded() {
	m.activeSessions.Dec()
}

// IncrSessionHit increments the session lookup hit counter.
func (m *Metrics) IncrSessionHit() {
	m.sessionLookups.WithLabelValues("hit").Inc()
}

// IncrSessionMiss increments the session lookup miss counter.
func (m *Metrics) IncrSessionMiss() {
	m.sessionLookups.WithLabelValues("miss").Inc()
}

// IncrNotification counts a notification outcome.
func (m *Metrics) IncrNotification(status string) {
	m.notifications.WithLabelValues(status).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrChartRendered counts a rendered chart.
func (m *Metrics) IncrChartRendered(format string) {
	m.chartsRendered.WithLabelValues(format).Inc()
}

// GetBudgetSnapshot returns the usage counters served by
// GET /v1/metrics/budget.
func (m *Metrics) GetBudgetSnapshot() *domain.BudgetMetrics {
	ops := make(map[string]int64, len(trackedOperations))
	for _, op := range trackedOperations {
		ops[op] = int64(getCounterValue(m.operations, op))
	}

	hits := getCounterValue(m.sessionLookups, "hit")
	misses := getCounterValue(m.sessionLookups, "miss")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.BudgetMetrics{
		SessionsCreated:        int64(readMetric(m.sessionsCreated)),
		ActiveSessions:         int64(readMetric(m.activeSessions)),
		Operations:             ops,
		SessionLookupHitRate:   hitRate,
		NotificationsDelivered: int64(getCounterValue(m.notifications, "delivered")),
		NotificationsFailed:    int64(getCounterValue(m.notifications, "failed")),
		ChartsRendered:         int64(getCounterValue(m.chartsRendered, "png") + getCounterValue(m.chartsRendered, "json")),
		Period:                 "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readMetric(cv.WithLabelValues(label))
}

// readMetric reads the current value of a counter or gauge.
func readMetric(metric prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := metric.Write(m); err != nil {
		return 0
	}
	switch {
	case m.Counter != nil && m.Counter.Value != nil:
		return *m.Counter.Value
	case m.Gauge != nil && m.Gauge.Value != nil:
		return *m.Gauge.Value
	}
	return 0
}

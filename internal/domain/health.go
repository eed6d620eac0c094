package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// BudgetMetrics is returned by GET /v1/metrics/budget.
type BudgetMetrics struct {
	SessionsCreated        int64            `json:"sessionsCreated"`
	ActiveSessions         int64            `json:"activeSessions"`
	Operations             map[string]int64 `json:"operations"`
	SessionLookupHitRate   float64          `json:"sessionLookupHitRate"`
	NotificationsDelivered int64            `json:"notificationsDelivered"`
	NotificationsFailed    int64            `json:"notificationsFailed"`
	ChartsRendered         int64            `json:"chartsRendered"`
	Period                 string           `json:"period"`
}

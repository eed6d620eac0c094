package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/client"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/sony/gobreaker"
)

// ============================================================
// Operational: /healthz, /readyz, /v1/metrics/budget
// ============================================================

func healthzHandler(notifier *client.WebhookNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "budgetwise-bfa", Status: "healthy", LastChecked: now},
		}

		if notifier != nil {
			status := "healthy"
			state := notifier.BreakerState()
			switch state {
			case gobreaker.StateOpen:
				status = "degraded"
			case gobreaker.StateHalfOpen:
				status = "recovering"
			}
			services = append(services, domain.ServiceHealth{
				Name:        "webhooks",
				Status:      status,
				Detail:      fmt.Sprintf("%d subscribers, breaker %s", notifier.Subscribers(), state),
				LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(svc *service.BudgetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func budgetMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetBudgetSnapshot())
	}
}

package handler

import (
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/client"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// notifier may be nil when no webhook subscribers are configured.
func NewRouter(
	svc *service.BudgetService,
	renderer port.ChartRenderer,
	notifier *client.WebhookNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(notifier))
	r.Get("/readyz", readyzHandler(svc))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Sessions
		// =============================================
		r.Post("/sessions", createSessionHandler(svc, logger))

		// =============================================
		// Metrics
		// =============================================
		r.Get("/metrics/budget", budgetMetricsHandler(metrics))

		// Everything below needs a session token.
		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(svc, logger))

			r.Delete("/sessions", deleteSessionHandler(svc))

			r.Route("/budget", func(r chi.Router) {
				r.Get("/", getBudgetHandler(svc, logger))
				r.Get("/snapshot", getSnapshotHandler(svc, logger))
				r.Post("/salary", setSalaryHandler(svc, logger))

				r.Post("/items/{category}", addItemHandler(svc, logger))
				r.Delete("/items/{category}/{id}", removeItemHandler(svc, logger))
				r.Patch("/items/{category}/{id}", updateItemHandler(svc, logger))

				r.Get("/chart", getChartHandler(svc, metrics, logger))
				r.Get("/chart.png", getChartPNGHandler(svc, renderer, metrics, logger))
			})
		})
	})

	return r
}

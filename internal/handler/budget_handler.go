package handler

import (
	"net/http"
	"strconv"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Reads: GET /v1/budget, /v1/budget/snapshot
// ============================================================

func getBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budget")
		defer span.End()

		view, err := svc.View(ctx, SessionIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func getSnapshotHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budget/snapshot")
		defer span.End()

		snap, err := svc.Snapshot(ctx, SessionIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewSnapshotResponse(*snap))
	}
}

// ============================================================
// Salary: POST /v1/budget/salary
// ============================================================

func setSalaryHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budget/salary")
		defer span.End()

		var req domain.SalaryRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		snap, err := svc.SetSalary(ctx, SessionIDFromContext(ctx), req.Value.Text())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewSnapshotResponse(*snap))
	}
}

// ============================================================
// Items: POST/DELETE/PATCH /v1/budget/items/{category}[/{id}]
// ============================================================

func addItemHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budget/items/{category}")
		defer span.End()

		category := categoryParam(r)
		span.SetAttributes(attribute.String("budget.category", string(category)))

		item, snap, err := svc.AddItem(ctx, SessionIDFromContext(ctx), category)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, domain.AddItemResponse{
			Category: category,
			Item:     *item,
			Snapshot: domain.NewSnapshotResponse(*snap),
		})
	}
}

func removeItemHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/budget/items/{category}/{id}")
		defer span.End()

		category := categoryParam(r)
		itemID := chi.URLParam(r, "id")
		span.SetAttributes(
			attribute.String("budget.category", string(category)),
			attribute.String("budget.item_id", itemID),
		)

		snap, err := svc.RemoveItem(ctx, SessionIDFromContext(ctx), category, itemID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewSnapshotResponse(*snap))
	}
}

func updateItemHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/budget/items/{category}/{id}")
		defer span.End()

		category := categoryParam(r)
		itemID := chi.URLParam(r, "id")
		span.SetAttributes(
			attribute.String("budget.category", string(category)),
			attribute.String("budget.item_id", itemID),
		)

		var req domain.UpdateItemRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		field, ok := domain.ParseItemField(req.Field)
		if !ok {
			writeError(w, http.StatusBadRequest, "field must be 'label' or 'amount'")
			return
		}

		snap, err := svc.UpdateItem(ctx, SessionIDFromContext(ctx), category, itemID, field, req.Value.Text())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewSnapshotResponse(*snap))
	}
}

// ============================================================
// Chart: GET /v1/budget/chart, /v1/budget/chart.png
// ============================================================

func getChartHandler(svc *service.BudgetService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budget/chart")
		defer span.End()

		chart, err := svc.Chart(ctx, SessionIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrChartRendered("json")
		writeJSON(w, http.StatusOK, chart)
	}
}

func getChartPNGHandler(svc *service.BudgetService, renderer port.ChartRenderer, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budget/chart.png")
		defer span.End()

		if renderer == nil {
			writeError(w, http.StatusServiceUnavailable, "chart rendering not configured")
			return
		}

		chart, err := svc.Chart(ctx, SessionIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if chart.Empty {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		img, err := renderer.RenderPNG(ctx, *chart)
		if err != nil {
			logger.Error("chart render failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to render chart")
			return
		}
		if img == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		metrics.IncrChartRendered("png")
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(img)
	}
}

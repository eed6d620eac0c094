package handler

import (
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Sessions: POST/DELETE /v1/sessions
// ============================================================

func createSessionHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions")
		defer span.End()

		resp, err := svc.CreateSession(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func deleteSessionHandler(svc *service.BudgetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/sessions")
		defer span.End()

		svc.DeleteSession(ctx, SessionIDFromContext(ctx))
		w.WriteHeader(http.StatusNoContent)
	}
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/handler"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/cache"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/client"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/render"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"go.uber.org/zap"
)

type testServer struct {
	router  http.Handler
	svc     *service.BudgetService
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, notifier *client.WebhookNotifier) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := cache.NewWithEviction[*domain.BudgetSession](time.Minute, func(string, *domain.BudgetSession) {
		metrics.SessionEnded()
	})
	t.Cleanup(store.Close)

	var sn port.SnapshotNotifier
	if notifier != nil {
		sn = notifier
	}
	svc := service.NewBudgetService(
		store,
		service.NewSessionTokens("test-secret", time.Minute),
		sn,
		time.Second,
		metrics,
		logger,
	)
	router := handler.NewRouter(svc, render.NewPieRenderer(300, 300, 2), notifier, metrics, logger)
	return &testServer{router: router, svc: svc, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) newSession(t *testing.T) domain.SessionResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/sessions", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var sess domain.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&sess); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	return sess
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) domain.SnapshotResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var snap domain.SnapshotResponse
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	return snap
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var health domain.HealthStatus
	json.NewDecoder(rec.Body).Decode(&health)
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %s", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPing(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/ping", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.newSession(t)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "budget_sessions_created_total") {
		t.Error("expected budget metrics in exposition")
	}
}

func TestBudgetRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/v1/budget/snapshot", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	if sess.Token == "" || sess.SessionID == "" {
		t.Fatalf("expected token and session id, got %+v", sess)
	}
	if got := len(sess.State.Categories[domain.CategoryDebts]); got != 2 {
		t.Errorf("expected 2 seeded debts, got %d", got)
	}
	if sess.Snapshot.Display.Remaining != "$0.00" {
		t.Errorf("expected $0.00 remaining, got %s", sess.Snapshot.Display.Remaining)
	}
}

func TestSetSalary_AcceptsStringsAndNumbers(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"number", `{"value": 3000}`, "3000"},
		{"string", `{"value": "2500.50"}`, "2500.5"},
		{"garbage", `{"value": "abc"}`, "0"},
		{"negative", `{"value": -10}`, "0"},
		{"null", `{"value": null}`, "0"},
		{"missing", `{}`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := decodeSnapshot(t, s.do(t, http.MethodPost, "/v1/budget/salary", sess.Token, tt.body))
			if snap.Salary.String() != tt.want {
				t.Errorf("expected salary %s, got %s", tt.want, snap.Salary)
			}
		})
	}
}

func TestSetSalary_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	rec := s.do(t, http.MethodPost, "/v1/budget/salary", sess.Token, `{"value":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSetSalary_OversizedBody(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	body := `{"value": "` + strings.Repeat("9", 2<<20) + `"}`
	rec := s.do(t, http.MethodPost, "/v1/budget/salary", sess.Token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	snap := decodeSnapshot(t, s.do(t, http.MethodGet, "/v1/budget/snapshot", sess.Token, nil))
	if !snap.Salary.IsZero() {
		t.Errorf("expected salary untouched, got %s", snap.Salary)
	}
}

func TestItems_UnknownCategory(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	rec := s.do(t, http.MethodPost, "/v1/budget/items/taxes", sess.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, "/v1/budget/items/taxes/abc", sess.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestItems_UnknownField(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)
	id := sess.State.Categories[domain.CategoryDebts][0].ID

	rec := s.do(t, http.MethodPatch, "/v1/budget/items/debts/"+id, sess.Token, map[string]any{
		"field": "color", "value": "red",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestItems_UnknownIDIsNoop(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	rec := s.do(t, http.MethodPatch, "/v1/budget/items/debts/does-not-exist", sess.Token, map[string]any{
		"field": "amount", "value": 100,
	})
	snap := decodeSnapshot(t, rec)
	if !snap.Allocated.IsZero() {
		t.Errorf("expected unchanged allocation, got %s", snap.Allocated)
	}

	rec = s.do(t, http.MethodDelete, "/v1/budget/items/debts/does-not-exist", sess.Token, nil)
	decodeSnapshot(t, rec)
}

func TestItems_HyphenatedCategory(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	rec := s.do(t, http.MethodPost, "/v1/budget/items/fixed-expenses", sess.Token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var added domain.AddItemResponse
	json.NewDecoder(rec.Body).Decode(&added)
	if added.Category != domain.CategoryFixedExpenses {
		t.Errorf("expected fixed_expenses, got %s", added.Category)
	}
	if added.Item.Label != "" || !added.Item.Amount.IsZero() {
		t.Errorf("expected empty item, got %+v", added.Item)
	}
}

func TestChartPNG_EmptyIsNoContent(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	rec := s.do(t, http.MethodGet, "/v1/budget/chart.png", sess.Token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/v1/budget/chart", sess.Token, nil)
	var chart domain.ChartData
	json.NewDecoder(rec.Body).Decode(&chart)
	if !chart.Empty || len(chart.Slices) != 0 {
		t.Errorf("expected empty chart, got %+v", chart)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)

	rec := s.do(t, http.MethodDelete, "/v1/sessions", sess.Token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// token is still well formed but the session is gone
	rec = s.do(t, http.MethodGet, "/v1/budget", sess.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestBudgetMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.newSession(t)
	s.do(t, http.MethodPost, "/v1/budget/salary", sess.Token, `{"value": 100}`)

	rec := s.do(t, http.MethodGet, "/v1/metrics/budget", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var m domain.BudgetMetrics
	json.NewDecoder(rec.Body).Decode(&m)
	if m.SessionsCreated != 1 || m.Operations["set_salary"] != 1 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

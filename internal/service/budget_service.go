// Package service provides the business logic layer (use cases).
// BudgetService hosts one BudgetModel per session and serializes every
// read and write against it.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/budget")

// BudgetService orchestrates budget sessions.
type BudgetService struct {
	sessions      port.SessionStore
	tokens        *SessionTokens
	notifier      port.SnapshotNotifier
	notifyTimeout time.Duration
	newItemID     domain.IDGenerator
	metrics       *observability.Metrics
	logger        *zap.Logger

	inflight sync.WaitGroup
}

// NewBudgetService creates the budget service. notifier may be nil.
func NewBudgetService(
	sessions port.SessionStore,
	tokens *SessionTokens,
	notifier port.SnapshotNotifier,
	notifyTimeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BudgetService {
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &BudgetService{
		sessions:      sessions,
		tokens:        tokens,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		newItemID:     domain.UUIDs(),
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// Sessions
// ============================================================

// CreateSession starts a seeded budget and returns its token and view.
func (s *BudgetService) CreateSession(ctx context.Context) (*domain.SessionResponse, error) {
	_, span := tracer.Start(ctx, "BudgetService.CreateSession")
	defer span.End()

	id := uuid.New().String()
	span.SetAttributes(attribute.String("session.id", id))

	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}

	model := domain.NewSeededBudgetModel(domain.WithIDGenerator(s.newItemID))
	sess := domain.NewBudgetSession(id, model, time.Now())

	var view domain.BudgetView
	sess.Do(func(m *domain.BudgetModel) {
		view = viewOf(m)
	})

	s.sessions.Set(id, sess)
	s.metrics.SessionStarted()
	s.logger.Info("budget session created", zap.String("session_id", id))

	return &domain.SessionResponse{
		SessionID:  id,
		Token:      token,
		ExpiresIn:  int(s.tokens.TTL().Seconds()),
		BudgetView: view,
	}, nil
}

// SessionFromToken validates a bearer token and returns its session id.
func (s *BudgetService) SessionFromToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

// DeleteSession discards a session. Deleting twice is fine.
func (s *BudgetService) DeleteSession(ctx context.Context, sessionID string) {
	_, span := tracer.Start(ctx, "BudgetService.DeleteSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	s.sessions.Delete(sessionID)
	s.logger.Info("budget session deleted", zap.String("session_id", sessionID))
}

// ============================================================
// Reads
// ============================================================

// Snapshot returns the current derived values.
func (s *BudgetService) Snapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.run(ctx, sessionID, observability.OpSnapshot, func(m *domain.BudgetModel) bool {
		snap = m.Snapshot()
		return false
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// View returns items and derived values together.
func (s *BudgetService) View(ctx context.Context, sessionID string) (*domain.BudgetView, error) {
	var view domain.BudgetView
	err := s.run(ctx, sessionID, observability.OpState, func(m *domain.BudgetModel) bool {
		view = viewOf(m)
		return false
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Chart returns the chart data for the current snapshot.
func (s *BudgetService) Chart(ctx context.Context, sessionID string) (*domain.ChartData, error) {
	var chart domain.ChartData
	err := s.run(ctx, sessionID, observability.OpChart, func(m *domain.BudgetModel) bool {
		chart = domain.BuildChart(m.Snapshot())
		return false
	})
	if err != nil {
		return nil, err
	}
	return &chart, nil
}

// ============================================================
// Mutations
// ============================================================

// SetSalary replaces the salary from raw input.
func (s *BudgetService) SetSalary(ctx context.Context, sessionID, raw string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.run(ctx, sessionID, observability.OpSetSalary, func(m *domain.BudgetModel) bool {
		m.SetSalaryInput(raw)
		snap = m.Snapshot()
		return true
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// AddItem appends an empty item to category.
func (s *BudgetService) AddItem(ctx context.Context, sessionID string, category domain.Category) (*domain.LineItem, *domain.Snapshot, error) {
	if !category.Valid() {
		return nil, nil, &domain.ErrValidation{Field: "category", Message: "unknown category " + string(category)}
	}

	var (
		item domain.LineItem
		snap domain.Snapshot
	)
	err := s.run(ctx, sessionID, observability.OpAddItem, func(m *domain.BudgetModel) bool {
		item = m.AddItem(category)
		snap = m.Snapshot()
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	return &item, &snap, nil
}

// RemoveItem deletes an item; an unknown id leaves the budget unchanged.
func (s *BudgetService) RemoveItem(ctx context.Context, sessionID string, category domain.Category, itemID string) (*domain.Snapshot, error) {
	if !category.Valid() {
		return nil, &domain.ErrValidation{Field: "category", Message: "unknown category " + string(category)}
	}

	var snap domain.Snapshot
	err := s.run(ctx, sessionID, observability.OpRemoveItem, func(m *domain.BudgetModel) bool {
		changed := m.RemoveItem(category, itemID)
		snap = m.Snapshot()
		return changed
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// UpdateItem changes an item's label or amount; an unknown id leaves the
// budget unchanged.
func (s *BudgetService) UpdateItem(ctx context.Context, sessionID string, category domain.Category, itemID string, field domain.ItemField, value string) (*domain.Snapshot, error) {
	if !category.Valid() {
		return nil, &domain.ErrValidation{Field: "category", Message: "unknown category " + string(category)}
	}
	if field != domain.FieldLabel && field != domain.FieldAmount {
		return nil, &domain.ErrValidation{Field: "field", Message: "must be 'label' or 'amount'"}
	}

	var snap domain.Snapshot
	err := s.run(ctx, sessionID, observability.OpUpdateItem, func(m *domain.BudgetModel) bool {
		changed := m.UpdateItem(category, itemID, field, value)
		snap = m.Snapshot()
		return changed
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (s *BudgetService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ============================================================
// Internals
// ============================================================

// run looks up the session, applies fn under the session lock and, when
// fn reports a change, publishes the resulting snapshot.
func (s *BudgetService) run(ctx context.Context, sessionID, operation string, fn func(m *domain.BudgetModel) bool) error {
	ctx, span := tracer.Start(ctx, "BudgetService."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	start := time.Now()
	defer func() {
		s.metrics.RecordOperation(operation, time.Since(start))
	}()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		s.metrics.IncrSessionMiss()
		return &domain.ErrNotFound{Resource: "session", ID: sessionID}
	}
	s.metrics.IncrSessionHit()

	var (
		changed bool
		snap    domain.Snapshot
	)
	sess.Do(func(m *domain.BudgetModel) {
		changed = fn(m)
		if changed {
			snap = m.Snapshot()
		}
	})

	// Refresh the sliding TTL. A session deleted or expired while fn ran
	// stays gone; whatever fn did to it is discarded.
	if !s.sessions.Touch(sessionID) {
		s.logger.Debug("budget session ended during operation",
			zap.String("session_id", sessionID),
			zap.String("operation", operation),
		)
		return &domain.ErrNotFound{Resource: "session", ID: sessionID}
	}

	span.SetAttributes(attribute.Bool("budget.changed", changed))
	if changed {
		s.logger.Debug("budget updated",
			zap.String("session_id", sessionID),
			zap.String("operation", operation),
		)
		s.publish(ctx, domain.SnapshotEvent{
			SessionID:  sessionID,
			Operation:  operation,
			Snapshot:   snap,
			OccurredAt: time.Now(),
		})
	}
	return nil
}

// publish hands the event to the notifier without blocking the caller.
func (s *BudgetService) publish(ctx context.Context, event domain.SnapshotEvent) {
	if s.notifier == nil {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(nctx, event); err != nil {
			s.metrics.IncrNotification("failed")
			s.metrics.IncrExternalError("webhook")
			s.logger.Warn("snapshot notification failed",
				zap.String("session_id", event.SessionID),
				zap.String("operation", event.Operation),
				zap.Error(err),
			)
			return
		}
		s.metrics.IncrNotification("delivered")
	}()
}

func viewOf(m *domain.BudgetModel) domain.BudgetView {
	return domain.BudgetView{
		State:    m.State(),
		Snapshot: domain.NewSnapshotResponse(m.Snapshot()),
	}
}

package domain

import (
	"sync"
	"time"
)

// BudgetSession owns one user's BudgetModel. Every access goes through
// Do, so a mutation and the snapshot taken after it are never interleaved
// with another request on the same session.
type BudgetSession struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	model *BudgetModel
}

// NewBudgetSession wraps model under id.
func NewBudgetSession(id string, model *BudgetModel, createdAt time.Time) *BudgetSession {
	return &BudgetSession{ID: id, CreatedAt: createdAt, model: model}
}

// Do runs fn with exclusive access to the model.
func (s *BudgetSession) Do(fn func(m *BudgetModel)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.model)
}

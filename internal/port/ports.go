// Package port defines the interfaces (ports) for the budget service's
// collaborators. Following hexagonal architecture, these ports decouple
// the service layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	// Touch refreshes the TTL of a live entry and reports whether it was
	// present. It never re-inserts.
	Touch(key string) bool
	Delete(key string)
}

// SessionStore holds live budget sessions.
type SessionStore = Cache[*domain.BudgetSession]

// SnapshotNotifier is told about every budget mutation so a presentation
// layer can re-render without polling.
type SnapshotNotifier interface {
	Notify(ctx context.Context, event domain.SnapshotEvent) error
}

// ChartRenderer turns chart data into an image. A nil result means there
// was nothing to draw.
type ChartRenderer interface {
	RenderPNG(ctx context.Context, chart domain.ChartData) ([]byte, error)
}

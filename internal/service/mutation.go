// Package service provides the business logic layer (use cases) of the
// licensing dashboard: companies, licenses, compliance items, the dashboard
// and sessions. The backend stays the only source of truth; every write is
// followed by a fresh read of the affected list.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
)

// Mutation is the result of a write: the item the backend returned (if any)
// and the list as re-read right after the write. Stale is set when that
// re-read failed; the write itself still went through.
type Mutation[T any, V any] struct {
	Item  *T   `json:"item,omitempty"`
	List  []V  `json:"lista"`
	Stale bool `json:"desatualizada,omitempty"`
}

// refetch re-reads the list after a successful write. A failure is logged and
// reported as Stale rather than undoing the write.
func refetch[T any, V any](
	ctx context.Context,
	logger *zap.Logger,
	metrics *observability.Metrics,
	entity string,
	item *T,
	list func(context.Context) ([]V, error),
) *Mutation[T, V] {
	m := &Mutation[T, V]{Item: item}

	fresh, err := list(ctx)
	if err != nil {
		observability.ForContext(ctx, logger).Warn("refetch after write failed",
			zap.String("entity", entity),
			zap.Error(err),
		)
		m.Stale = true
	} else {
		m.List = fresh
	}

	if metrics != nil {
		metrics.RecordWrite(entity, err == nil)
	}
	return m
}

// requireConfirmation is the gate in front of destructive actions.
func requireConfirmation(confirmed bool, action string) error {
	if !confirmed {
		return &domain.ErrConfirmationRequired{Action: action}
	}
	return nil
}

// clock is shared by the services so tests can pin "today".
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

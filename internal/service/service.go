// Package service holds the domain operations behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"github.com/google/uuid"
)

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// List is one page of results with the total match count.
type List[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// adjustCounter applies a counter change in a savepoint of tx. A failure rolls back
// only the savepoint; it is logged and counted, and the caller's write proceeds.
func adjustCounter(ctx context.Context, tx *repository.Store, c repository.Counter, delta int) {
	err := tx.Transaction(ctx, func(sp *repository.Store) error {
		if delta > 0 {
			return sp.Counters.Increment(ctx, c)
		}
		return sp.Counters.Decrement(ctx, c)
	})
	if err != nil {
		observability.CounterMaintenanceFailures.WithLabelValues(c.Name()).Inc()
		middleware.Logger.WarnContext(ctx, "counter maintenance failed",
			slog.String("counter", c.Name()),
			slog.Int("delta", delta),
			slog.String("error", err.Error()),
		)
	}
}

func parseUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}

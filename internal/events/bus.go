// Package events is a typed, in-process dispatcher for domain side effects.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"
)

// Event is a domain event. Name identifies it in logs and metrics.
type Event interface {
	EventName() string
}

type handler func(ctx context.Context, e Event)

// Bus delivers events synchronously to the handlers subscribed to their concrete type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]handler)}
}

// Subscribe registers fn for events of type E.
func Subscribe[E Event](b *Bus, fn func(ctx context.Context, e E)) {
	var zero E
	key := reflect.TypeOf(zero)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], func(ctx context.Context, e Event) {
		fn(ctx, e.(E))
	})
}

// Publish invokes every handler for e's type in registration order. A panicking
// handler is logged and does not stop the others or reach the caller.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	hs := b.handlers[reflect.TypeOf(e)]
	b.mu.RUnlock()

	observability.DomainEvents.WithLabelValues(e.EventName()).Inc()

	for _, h := range hs {
		b.dispatch(ctx, e, h)
	}
}

func (b *Bus) dispatch(ctx context.Context, e Event, h handler) {
	defer func() {
		if r := recover(); r != nil {
			observability.EventHandlerPanics.WithLabelValues(e.EventName()).Inc()
			middleware.Logger.ErrorContext(ctx, "event handler panicked",
				slog.String("event", e.EventName()),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	h(ctx, e)
}

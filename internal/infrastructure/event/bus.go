package event

import (
	"context"
	"sync"

	"github.com/estate/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Bus fans lifecycle events out to the application handlers subscribed to
// them. Services publish after their transaction commits, and the bus drives
// the side effects in the caller's goroutine: a LeaseActivated materializes
// the rent schedule, a PropertyCreated opens a verification task, and so on.
//
// A failing handler is logged and skipped. The commit already happened, so
// the remaining handlers still get their chance at the event.
type Bus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		byType: make(map[string][]shared.EventHandler),
		log:    log,
	}
}

// Publish delivers each event to the handlers subscribed to its type, then
// to the catch-all handlers. Delivery order follows subscription order.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.handlersFor(ev.EventType()) {
			if err := b.deliver(ctx, h, ev); err != nil {
				b.log.Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. When eventTypes is empty the handler's own
// EventTypes decide the subscription, and an empty answer there makes it a
// catch-all that sees every event.
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		b.catchAll = append(b.catchAll, handler)
	} else {
		for _, t := range eventTypes {
			b.byType[t] = append(b.byType[t], handler)
		}
	}

	b.log.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes the handler from every subscription it appears in.
func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.catchAll = without(b.catchAll, handler)
	for t, hs := range b.byType {
		b.byType[t] = without(hs, handler)
		if len(b.byType[t]) == 0 {
			delete(b.byType, t)
		}
	}

	b.log.Debug("handler unsubscribed")
}

func (b *Bus) Start(ctx context.Context) error {
	b.log.Info("event bus started")
	return nil
}

func (b *Bus) Stop(ctx context.Context) error {
	b.log.Info("event bus stopped")
	return nil
}

// handlersFor snapshots the delivery list so handlers run outside the lock.
func (b *Bus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.byType[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(b.catchAll))
	out = append(out, typed...)
	out = append(out, b.catchAll...)
	return out
}

// deliver invokes one handler, converting a panic into a logged miss so one
// bad handler cannot take down the publishing service.
func (b *Bus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return h.Handle(ctx, ev)
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	out := handlers[:0:0]
	for _, h := range handlers {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

var _ shared.EventBus = (*Bus)(nil)

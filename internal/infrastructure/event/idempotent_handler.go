package event

import (
	"context"
	"sync/atomic"

	"github.com/estate/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler wraps an application handler with a processed-event
// check. The handlers behind it create things on redelivery that must not
// exist twice: a second LeaseActivated would materialize a second rent
// schedule, a second PropertyCreated a second verification task. The store
// remembers event IDs for a TTL and the wrapper drops anything it has
// already seen.
type IdempotentHandler struct {
	inner   shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	log     *zap.Logger
	metrics *IdempotencyMetrics
}

// IdempotencyMetrics counts outcomes across the handlers sharing it.
type IdempotencyMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// IdempotencyStats is a point-in-time snapshot of IdempotencyMetrics.
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// GlobalIdempotencyMetrics aggregates across every wrapped handler in the
// process. Inject a dedicated instance instead when per-handler numbers
// matter.
var GlobalIdempotencyMetrics = &IdempotencyMetrics{}

type IdempotentHandlerOption func(*IdempotentHandler)

func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.metrics = metrics
	}
}

func NewIdempotentHandler(
	inner shared.EventHandler,
	store shared.IdempotencyStore,
	log *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		inner:   inner,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		log:     log,
		metrics: &IdempotencyMetrics{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WrapHandlersWithIdempotency wraps each handler against the same store.
func WrapHandlersWithIdempotency(
	handlers []shared.EventHandler,
	store shared.IdempotencyStore,
	log *zap.Logger,
	opts ...IdempotentHandlerOption,
) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, len(handlers))
	for i, h := range handlers {
		wrapped[i] = NewIdempotentHandler(h, store, log, opts...)
	}
	return wrapped
}

// EventTypes defers to the wrapped handler so subscription is unchanged.
func (h *IdempotentHandler) EventTypes() []string {
	return h.inner.EventTypes()
}

// Handle claims the event ID in the store before running the inner handler.
// A failed claim check is treated as new: running a side effect twice is
// recoverable, silently dropping a lease notification is not. A failed
// inner handler keeps its claim, so retries wait out the TTL instead of
// hammering a broken dependency.
func (h *IdempotentHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.inner.Handle(ctx, ev)
	}

	eventID := ev.EventID().String()

	fresh, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		h.log.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", ev.EventType()),
			zap.Error(err),
		)
	case !fresh:
		h.metrics.EventsDuplicate.Add(1)
		h.log.Debug("duplicate event dropped",
			zap.String("event_id", eventID),
			zap.String("event_type", ev.EventType()),
		)
		return nil
	}

	if err := h.inner.Handle(ctx, ev); err != nil {
		h.metrics.EventsFailed.Add(1)
		return err
	}

	h.metrics.EventsProcessed.Add(1)
	return nil
}

// Metrics exposes the counters for this handler.
func (h *IdempotentHandler) Metrics() *IdempotencyMetrics {
	return h.metrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

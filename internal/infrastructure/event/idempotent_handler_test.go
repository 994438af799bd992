package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("first delivery reaches the inner handler", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		ev := leaseActivated()
		inner.On("Handle", mock.Anything, ev).Return(nil)

		h := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, h.Handle(ctx, ev))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), h.Metrics().EventsProcessed.Load())
	})

	t.Run("redelivery is dropped without rerunning side effects", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		ev := leaseActivated()
		inner.On("Handle", mock.Anything, ev).Return(nil).Once()

		h := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, h.Handle(ctx, ev))
		require.NoError(t, h.Handle(ctx, ev))
		require.NoError(t, h.Handle(ctx, ev))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), h.Metrics().EventsProcessed.Load())
		assert.Equal(t, int64(2), h.Metrics().EventsDuplicate.Load())
	})

	t.Run("distinct events pass through independently", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		activated := leaseActivated()
		created := propertyCreated()
		inner.On("Handle", mock.Anything, activated).Return(nil).Once()
		inner.On("Handle", mock.Anything, created).Return(nil).Once()

		h := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, h.Handle(ctx, activated))
		require.NoError(t, h.Handle(ctx, created))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(2), h.Metrics().EventsProcessed.Load())
	})

	t.Run("inner failure surfaces and keeps the claim", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		ev := leaseActivated()
		handlerErr := errors.New("notification channel down")
		inner.On("Handle", mock.Anything, ev).Return(handlerErr).Once()

		h := NewIdempotentHandler(inner, store, zap.NewNop())
		require.ErrorIs(t, h.Handle(ctx, ev), handlerErr)

		// The claim stays until the TTL runs out, so an immediate retry
		// is treated as a duplicate
		require.NoError(t, h.Handle(ctx, ev))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), h.Metrics().EventsFailed.Load())
		assert.Equal(t, int64(1), h.Metrics().EventsDuplicate.Load())
	})

	t.Run("a broken store does not drop the event", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := new(MockEventHandler)
		ev := leaseActivated()

		store.On("MarkProcessed", mock.Anything, ev.EventID().String(), mock.Anything).
			Return(false, errors.New("redis connection refused"))
		inner.On("Handle", mock.Anything, ev).Return(nil)

		h := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, h.Handle(ctx, ev))

		store.AssertExpectations(t)
		inner.AssertExpectations(t)
	})

	t.Run("disabled config passes everything through", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		ev := leaseActivated()
		inner.On("Handle", mock.Anything, ev).Return(nil).Times(3)

		cfg := shared.DefaultIdempotencyConfig()
		cfg.Enabled = false
		h := NewIdempotentHandler(inner, store, zap.NewNop(), WithIdempotencyConfig(cfg))

		for i := 0; i < 3; i++ {
			require.NoError(t, h.Handle(ctx, ev))
		}

		inner.AssertExpectations(t)
		assert.Equal(t, int64(0), h.Metrics().EventsProcessed.Load())
	})

	t.Run("concurrent redeliveries run the side effect once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		ev := leaseActivated()
		inner.On("Handle", mock.Anything, ev).Return(nil).Once()

		h := NewIdempotentHandler(inner, store, zap.NewNop())

		const deliveries = 50
		errs := make(chan error, deliveries)
		for i := 0; i < deliveries; i++ {
			go func() {
				errs <- h.Handle(ctx, ev)
			}()
		}
		for i := 0; i < deliveries; i++ {
			assert.NoError(t, <-errs)
		}

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), h.Metrics().EventsProcessed.Load())
		assert.Equal(t, int64(deliveries-1), h.Metrics().EventsDuplicate.Load())
	})
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"LeaseActivated", "LeaseRenewed"})

	h := NewIdempotentHandler(inner, store, zap.NewNop())
	assert.Equal(t, []string{"LeaseActivated", "LeaseRenewed"}, h.EventTypes())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	combined := &IdempotencyMetrics{}

	schedules := new(MockEventHandler)
	notifications := new(MockEventHandler)
	activated := leaseActivated()
	created := propertyCreated()
	schedules.On("Handle", mock.Anything, activated).Return(nil)
	notifications.On("Handle", mock.Anything, created).Return(nil)

	h1 := NewIdempotentHandler(schedules, store, zap.NewNop(), WithIdempotencyMetrics(combined))
	h2 := NewIdempotentHandler(notifications, store, zap.NewNop(), WithIdempotencyMetrics(combined))

	require.NoError(t, h1.Handle(context.Background(), activated))
	require.NoError(t, h2.Handle(context.Background(), created))

	assert.Equal(t, int64(2), combined.EventsProcessed.Load())
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	handlers := []shared.EventHandler{new(MockEventHandler), new(MockEventHandler)}
	wrapped := WrapHandlersWithIdempotency(handlers, store, zap.NewNop())

	require.Len(t, wrapped, 2)
	for _, h := range wrapped {
		assert.IsType(t, &IdempotentHandler{}, h)
	}
}

func TestIdempotencyMetrics_Stats(t *testing.T) {
	m := &IdempotencyMetrics{}
	m.EventsProcessed.Add(10)
	m.EventsDuplicate.Add(5)
	m.EventsFailed.Add(2)

	stats := m.Stats()
	assert.Equal(t, int64(10), stats.EventsProcessed)
	assert.Equal(t, int64(5), stats.EventsDuplicate)
	assert.Equal(t, int64(2), stats.EventsFailed)
}

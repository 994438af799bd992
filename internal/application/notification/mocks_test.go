package notification

import (
	"context"
	"time"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock implementation of notification.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByTarget(ctx context.Context, actorID uuid.UUID, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*notification.Notification, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindWithDueRetries(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) SaveWithLock(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// fakeAdapter records sends for one channel and fails on demand
type fakeAdapter struct {
	channel notification.Channel
	err     error
	sent    []notification.Payload
}

func (a *fakeAdapter) Channel() notification.Channel {
	return a.channel
}

func (a *fakeAdapter) Send(_ context.Context, payload notification.Payload) error {
	if a.err != nil {
		return a.err
	}
	a.sent = append(a.sent, payload)
	return nil
}

// mockPropertyFinder is a mock implementation of listing.PropertyRepository
type mockPropertyFinder struct {
	mock.Mock
}

func (m *mockPropertyFinder) FindByID(ctx context.Context, id uuid.UUID) (*listing.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Property), args.Error(1)
}

func (m *mockPropertyFinder) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*listing.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Property), args.Error(1)
}

func (m *mockPropertyFinder) FindByStatus(ctx context.Context, status listing.PropertyStatus) ([]*listing.Property, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Property), args.Error(1)
}

func (m *mockPropertyFinder) FindActiveListings(ctx context.Context) ([]*listing.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Property), args.Error(1)
}

func (m *mockPropertyFinder) Save(ctx context.Context, property *listing.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *mockPropertyFinder) SaveWithLock(ctx context.Context, property *listing.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *mockPropertyFinder) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPropertyFinder) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockDispatcher is a mock implementation of Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Notify(ctx context.Context, target uuid.UUID, nType notification.NotificationType,
	priority notification.Priority, title, body string, reference uuid.UUID) error {
	args := m.Called(ctx, target, nType, priority, title, body, reference)
	return args.Error(0)
}

func (m *MockDispatcher) CancelByReference(ctx context.Context, referenceID uuid.UUID) (int, error) {
	args := m.Called(ctx, referenceID)
	return args.Int(0), args.Error(1)
}

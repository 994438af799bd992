package leasing

import (
	"context"
	"time"

	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLeaseRepository is a mock implementation of leasing.LeaseRepository
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*leasing.Lease, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*leasing.Lease, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) CountActiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaseRepository) FindExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]*leasing.Lease, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindExpiringSoon(ctx context.Context, cutoff time.Time, window time.Duration, limit int) ([]*leasing.Lease, error) {
	args := m.Called(ctx, cutoff, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPropertyRepository is a mock implementation of listing.PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*listing.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindByStatus(ctx context.Context, status listing.PropertyStatus) ([]*listing.Property, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindActiveListings(ctx context.Context) ([]*listing.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Property), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, property *listing.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) SaveWithLock(ctx context.Context, property *listing.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPeriodRepository is a mock implementation of leasing.RentPaymentPeriodRepository
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]*leasing.RentPaymentPeriod, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.RentPaymentPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindDuePending(ctx context.Context, cutoff time.Time, limit int) ([]*leasing.RentPaymentPeriod, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.RentPaymentPeriod), args.Error(1)
}

func (m *MockPeriodRepository) MarkOverdue(ctx context.Context, periodID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, periodID, now)
	return args.Error(0)
}

// MockPropertyCache is a mock implementation of PropertyCacheInvalidator
type MockPropertyCache struct {
	mock.Mock
}

func (m *MockPropertyCache) Invalidate(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, target uuid.UUID, nType notification.NotificationType,
	priority notification.Priority, title, body string, reference uuid.UUID) error {
	args := m.Called(ctx, target, nType, priority, title, body, reference)
	return args.Error(0)
}

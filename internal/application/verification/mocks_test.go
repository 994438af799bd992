package verification

import (
	"context"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository is a mock implementation of verification.TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*verification.VerificationTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.VerificationTask), args.Error(1)
}

func (m *MockTaskRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*verification.VerificationTask, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*verification.VerificationTask), args.Error(1)
}

func (m *MockTaskRepository) FindOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*verification.VerificationTask, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*verification.VerificationTask), args.Error(1)
}

func (m *MockTaskRepository) CountOpenByVerifierAndProperty(ctx context.Context, verifierID, propertyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, verifierID, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) FindPending(ctx context.Context, limit int) ([]*verification.VerificationTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*verification.VerificationTask), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *verification.VerificationTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveWithLock(ctx context.Context, task *verification.VerificationTask) error {
	args := m.Called(ctx, task)
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

// MockPropertyCache is a mock implementation of PropertyCacheInvalidator
type MockPropertyCache struct {
	mock.Mock
}

func (m *MockPropertyCache) Invalidate(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}

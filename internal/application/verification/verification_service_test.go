package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/statemachine"
	"github.com/estate/backend/internal/domain/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newVerificationService(taskRepo *MockTaskRepository, propertyRepo *MockPropertyRepository) *VerificationService {
	txScope := NewNoOpTransactionScope(taskRepo, propertyRepo)
	return NewVerificationService(taskRepo, txScope, zap.NewNop())
}

func newPendingTask(t *testing.T, propertyID uuid.UUID) *verification.VerificationTask {
	t.Helper()
	task, err := verification.NewVerificationTask(propertyID)
	require.NoError(t, err)
	task.ClearDomainEvents()
	return task
}

func newAssignedTask(t *testing.T, propertyID, verifierID uuid.UUID) *verification.VerificationTask {
	t.Helper()
	task := newPendingTask(t, propertyID)
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	require.NoError(t, task.Assign(admin, verifierID))
	task.ClearDomainEvents()
	return task
}

func newPendingProperty(t *testing.T) *listing.Property {
	t.Helper()
	property, err := listing.NewProperty(uuid.New(), "2BHK near the lake", "14 Lake Rd", "Pune")
	require.NoError(t, err)
	property.ClearDomainEvents()
	return property
}

func TestVerificationService_Assign(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	t.Run("assigns pending task to an idle verifier", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		propertyID := uuid.New()
		verifierID := uuid.New()
		task := newPendingTask(t, propertyID)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		taskRepo.On("CountOpenByVerifierAndProperty", ctx, verifierID, propertyID).Return(int64(0), nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)

		err := service.Assign(ctx, admin, task.ID, verifierID)

		require.NoError(t, err)
		assert.Equal(t, verification.TaskStatusAssigned, task.Status)
		require.NotNil(t, task.VerifierID)
		assert.Equal(t, verifierID, *task.VerifierID)
		taskRepo.AssertExpectations(t)
	})

	t.Run("rejects verifier already holding an open task for the property", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		propertyID := uuid.New()
		verifierID := uuid.New()
		task := newPendingTask(t, propertyID)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		taskRepo.On("CountOpenByVerifierAndProperty", ctx, verifierID, propertyID).Return(int64(1), nil)

		err := service.Assign(ctx, admin, task.ID, verifierID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VERIFIER_BUSY", domainErr.Code)
		assert.Equal(t, verification.TaskStatusPending, task.Status)
		taskRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("verifier cannot assign tasks", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		propertyID := uuid.New()
		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newPendingTask(t, propertyID)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		taskRepo.On("CountOpenByVerifierAndProperty", ctx, verifier.ID, propertyID).Return(int64(0), nil)

		err := service.Assign(ctx, verifier, task.ID, verifier.ID)

		require.Error(t, err)
		assert.True(t, statemachine.IsGuardViolation(err))
		taskRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestVerificationService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("starts inspection and moves property verification in progress", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newAssignedTask(t, property.ID, verifier.ID)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		propertyRepo.On("FindByID", ctx, property.ID).Return(property, nil)
		propertyRepo.On("SaveWithLock", ctx, property).Return(nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)

		err := service.Start(ctx, verifier, task.ID)

		require.NoError(t, err)
		assert.Equal(t, verification.TaskStatusInProgress, task.Status)
		assert.Equal(t, listing.VerificationInProgress, property.VerificationStatus)
		taskRepo.AssertExpectations(t)
		propertyRepo.AssertExpectations(t)
	})

	t.Run("rejects a verifier who is not the assignee", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		task := newAssignedTask(t, property.ID, uuid.New())
		other := identity.NewActor(uuid.New(), identity.RoleVerifier)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)

		err := service.Start(ctx, other, task.ID)

		require.Error(t, err)
		assert.True(t, statemachine.IsGuardViolation(err))
		assert.Equal(t, "assigned_verifier", statemachine.ViolatedRule(err))
		taskRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		propertyRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("restarts verification on a previously rejected property", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		require.NoError(t, property.StartVerification())
		require.NoError(t, property.CompleteVerification(false))
		property.ClearDomainEvents()

		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newAssignedTask(t, property.ID, verifier.ID)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		propertyRepo.On("FindByID", ctx, property.ID).Return(property, nil)
		propertyRepo.On("SaveWithLock", ctx, property).Return(nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)

		err := service.Start(ctx, verifier, task.ID)

		require.NoError(t, err)
		assert.Equal(t, listing.VerificationInProgress, property.VerificationStatus)
	})
}

func TestVerificationService_Complete(t *testing.T) {
	ctx := context.Background()

	startInspection := func(t *testing.T, task *verification.VerificationTask, property *listing.Property, verifier identity.Actor) {
		t.Helper()
		require.NoError(t, task.Start(verifier))
		require.NoError(t, property.StartVerification())
		task.ClearDomainEvents()
	}

	t.Run("clean pass verifies the property", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newAssignedTask(t, property.ID, verifier.ID)
		startInspection(t, task, property, verifier)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		propertyRepo.On("FindByID", ctx, property.ID).Return(property, nil)
		propertyRepo.On("SaveWithLock", ctx, property).Return(nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)

		findings := []verification.Finding{
			{Check: "structural", Passed: true},
			{Check: "ownership_documents", Passed: true},
		}
		err := service.Complete(ctx, verifier, task.ID, 8, findings)

		require.NoError(t, err)
		assert.Equal(t, verification.TaskStatusCompleted, task.Status)
		assert.True(t, task.Passed())
		assert.Equal(t, listing.VerificationVerified, property.VerificationStatus)
		taskRepo.AssertExpectations(t)
		propertyRepo.AssertExpectations(t)
	})

	t.Run("failed check rejects the property", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newAssignedTask(t, property.ID, verifier.ID)
		startInspection(t, task, property, verifier)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		propertyRepo.On("FindByID", ctx, property.ID).Return(property, nil)
		propertyRepo.On("SaveWithLock", ctx, property).Return(nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)

		findings := []verification.Finding{
			{Check: "structural", Passed: true},
			{Check: "title_deed", Passed: false, Legal: true, Remarks: "deed under dispute"},
		}
		err := service.Complete(ctx, verifier, task.ID, 4, findings)

		require.NoError(t, err)
		assert.False(t, task.Passed())
		assert.True(t, task.HasLegalIssues())
		assert.Equal(t, listing.VerificationRejected, property.VerificationStatus)
	})

	t.Run("outcome drops the property from the cache", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		propertyCache := new(MockPropertyCache)
		service.SetPropertyCache(propertyCache)

		property := newPendingProperty(t)
		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newAssignedTask(t, property.ID, verifier.ID)
		startInspection(t, task, property, verifier)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		propertyRepo.On("FindByID", ctx, property.ID).Return(property, nil)
		propertyRepo.On("SaveWithLock", ctx, property).Return(nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)
		propertyCache.On("Invalidate", ctx, property.ID).Return()

		findings := []verification.Finding{{Check: "structural", Passed: true}}
		err := service.Complete(ctx, verifier, task.ID, 9, findings)

		require.NoError(t, err)
		propertyCache.AssertExpectations(t)
	})

	t.Run("out of range score fails before any write", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		verifier := identity.NewActor(uuid.New(), identity.RoleVerifier)
		task := newAssignedTask(t, property.ID, verifier.ID)
		startInspection(t, task, property, verifier)

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)

		err := service.Complete(ctx, verifier, task.ID, 11, nil)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_SCORE", domainErr.Code)
		taskRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		propertyRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestVerificationService_Reject(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	t.Run("rejecting an assigned task still lands on the property", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		propertyCache := new(MockPropertyCache)
		service.SetPropertyCache(propertyCache)

		property := newPendingProperty(t)
		task := newAssignedTask(t, property.ID, uuid.New())

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
		propertyRepo.On("FindByID", ctx, property.ID).Return(property, nil)
		propertyRepo.On("SaveWithLock", ctx, property).Return(nil)
		taskRepo.On("SaveWithLock", ctx, task).Return(nil)
		propertyCache.On("Invalidate", ctx, property.ID).Return()

		err := service.Reject(ctx, admin, task.ID, "owner unreachable for site visit")

		require.NoError(t, err)
		assert.Equal(t, verification.TaskStatusRejected, task.Status)
		assert.Equal(t, listing.VerificationRejected, property.VerificationStatus)
		propertyCache.AssertExpectations(t)
	})

	t.Run("requires a reason", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		propertyRepo := new(MockPropertyRepository)
		service := newVerificationService(taskRepo, propertyRepo)

		property := newPendingProperty(t)
		task := newAssignedTask(t, property.ID, uuid.New())

		taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)

		err := service.Reject(ctx, admin, task.ID, "")

		require.Error(t, err)
		taskRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestVerificationService_Unassign(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	taskRepo := new(MockTaskRepository)
	propertyRepo := new(MockPropertyRepository)
	service := newVerificationService(taskRepo, propertyRepo)

	property := newPendingProperty(t)
	task := newAssignedTask(t, property.ID, uuid.New())

	taskRepo.On("FindByID", ctx, task.ID).Return(task, nil)
	taskRepo.On("SaveWithLock", ctx, task).Return(nil)

	err := service.Unassign(ctx, admin, task.ID)

	require.NoError(t, err)
	assert.Equal(t, verification.TaskStatusPending, task.Status)
	assert.Nil(t, task.VerifierID)
	taskRepo.AssertExpectations(t)
}

func TestPropertyCreatedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a task for a new property", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		handler := NewPropertyCreatedHandler(taskRepo, zap.NewNop())

		property := newPendingProperty(t)
		event := listing.NewPropertyCreatedEvent(property)

		taskRepo.On("FindOpenByProperty", ctx, property.ID).Return([]*verification.VerificationTask{}, nil)
		taskRepo.On("Save", ctx, mock.MatchedBy(func(task *verification.VerificationTask) bool {
			return task.PropertyID == property.ID && task.Status == verification.TaskStatusPending
		})).Return(nil)

		err := handler.Handle(ctx, event)

		require.NoError(t, err)
		taskRepo.AssertExpectations(t)
	})

	t.Run("redelivery does not open a second task", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		handler := NewPropertyCreatedHandler(taskRepo, zap.NewNop())

		property := newPendingProperty(t)
		event := listing.NewPropertyCreatedEvent(property)
		existing := newPendingTask(t, property.ID)

		taskRepo.On("FindOpenByProperty", ctx, property.ID).Return([]*verification.VerificationTask{existing}, nil)

		err := handler.Handle(ctx, event)

		require.NoError(t, err)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("declares interest in property creation only", func(t *testing.T) {
		handler := NewPropertyCreatedHandler(new(MockTaskRepository), zap.NewNop())
		assert.Equal(t, []string{listing.EventTypePropertyCreated}, handler.EventTypes())
	})
}

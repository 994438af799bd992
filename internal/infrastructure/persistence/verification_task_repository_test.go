package persistence

import (
	"context"
	"testing"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPendingTask(t *testing.T) *verification.VerificationTask {
	t.Helper()
	task, err := verification.NewVerificationTask(uuid.New())
	require.NoError(t, err)
	task.ClearDomainEvents()
	return task
}

func TestGormVerificationTaskRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormVerificationTaskRepository(db)
	ctx := context.Background()

	task := createPendingTask(t)
	require.NoError(t, repo.Save(ctx, task))

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, verification.TaskStatusPending, found.Status)
	assert.Nil(t, found.VerifierID)
	assert.Empty(t, found.Findings)
}

func TestGormVerificationTaskRepository_SavePersistsFindings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormVerificationTaskRepository(db)
	ctx := context.Background()

	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	verifierID := uuid.New()
	verifier := identity.NewActor(verifierID, identity.RoleVerifier)

	task := createPendingTask(t)
	require.NoError(t, task.Assign(admin, verifierID))
	require.NoError(t, task.Start(verifier))
	require.NoError(t, task.Complete(verifier, 8, []verification.Finding{
		{Check: "electrical", Passed: true},
		{Check: "ownership_papers", Passed: false, Legal: true, Remarks: "deed missing"},
	}))
	task.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, task))

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, verification.TaskStatusCompleted, found.Status)
	require.Len(t, found.Findings, 2)
	assert.False(t, found.Passed())
	assert.True(t, found.HasLegalIssues())
	require.NotNil(t, found.QualityScore)
	assert.Equal(t, 8, *found.QualityScore)
}

func TestGormVerificationTaskRepository_FindOpenByProperty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormVerificationTaskRepository(db)
	ctx := context.Background()

	open := createPendingTask(t)
	require.NoError(t, repo.Save(ctx, open))

	closed := createPendingTask(t)
	closed.PropertyID = open.PropertyID
	require.NoError(t, closed.Reject(identity.NewActor(uuid.New(), identity.RoleAdmin), "duplicate"))
	closed.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, closed))

	found, err := repo.FindOpenByProperty(ctx, open.PropertyID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, open.ID, found[0].ID)
}

func TestGormVerificationTaskRepository_CountOpenByVerifierAndProperty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormVerificationTaskRepository(db)
	ctx := context.Background()

	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	verifierID := uuid.New()

	assigned := createPendingTask(t)
	require.NoError(t, assigned.Assign(admin, verifierID))
	assigned.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, assigned))

	count, err := repo.CountOpenByVerifierAndProperty(ctx, verifierID, assigned.PropertyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// a different property does not count against the verifier
	count, err = repo.CountOpenByVerifierAndProperty(ctx, verifierID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestGormVerificationTaskRepository_FindPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormVerificationTaskRepository(db)
	ctx := context.Background()

	first := createPendingTask(t)
	second := createPendingTask(t)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	assigned := createPendingTask(t)
	require.NoError(t, assigned.Assign(identity.NewActor(uuid.New(), identity.RoleAdmin), uuid.New()))
	assigned.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, assigned))

	found, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGormVerificationTaskRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormVerificationTaskRepository(db)
	ctx := context.Background()

	task := createPendingTask(t)
	require.NoError(t, repo.Save(ctx, task))

	stale, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)

	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	require.NoError(t, task.Assign(admin, uuid.New()))
	task.ClearDomainEvents()
	require.NoError(t, repo.SaveWithLock(ctx, task))
	assert.Equal(t, 2, task.Version)

	require.NoError(t, stale.Assign(admin, uuid.New()))
	stale.ClearDomainEvents()
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)
}

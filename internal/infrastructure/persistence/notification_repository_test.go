package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createNotification(t *testing.T) *notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(uuid.New(), notification.TypeRentOverdue,
		notification.PriorityHigh, "Rent overdue", "Period 3 is overdue")
	require.NoError(t, err)
	n.ClearDomainEvents()
	return n
}

func TestGormNotificationRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	n := createNotification(t)
	n.EnsureDelivery(notification.ChannelInApp)
	n.EnsureDelivery(notification.ChannelEmail)
	require.NoError(t, repo.Save(ctx, n))

	found, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.TypeRentOverdue, found.Type)
	require.Len(t, found.Deliveries, 2)
	for _, d := range found.Deliveries {
		assert.Equal(t, notification.DeliveryStatusPending, d.Status)
	}
}

func TestGormNotificationRepository_FindByTarget(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	n := createNotification(t)
	other := createNotification(t)
	require.NoError(t, repo.Save(ctx, n))
	require.NoError(t, repo.Save(ctx, other))

	found, err := repo.FindByTarget(ctx, n.TargetActorID, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, n.ID, found[0].ID)
}

func TestGormNotificationRepository_FindByReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	leaseID := uuid.New()
	about := createNotification(t).WithReference(leaseID)
	unrelated := createNotification(t)
	require.NoError(t, repo.Save(ctx, about))
	require.NoError(t, repo.Save(ctx, unrelated))

	found, err := repo.FindByReference(ctx, leaseID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, about.ID, found[0].ID)
}

func TestGormNotificationRepository_FindWithDueRetries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()
	now := time.Now()

	// fresh pending delivery with no retry time is due immediately
	due := createNotification(t)
	due.EnsureDelivery(notification.ChannelInApp)
	require.NoError(t, repo.Save(ctx, due))

	// failed once, backed off into the future
	waiting := createNotification(t)
	waiting.EnsureDelivery(notification.ChannelEmail)
	require.NoError(t, waiting.MarkFailed(notification.ChannelEmail, "smtp unavailable", 5, time.Hour))
	waiting.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, waiting))

	// already sent, nothing left to retry
	sent := createNotification(t)
	sent.EnsureDelivery(notification.ChannelInApp)
	require.NoError(t, sent.MarkSent(notification.ChannelInApp))
	sent.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, sent))

	found, err := repo.FindWithDueRetries(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)

	// once the backoff elapses the waiting one surfaces too
	found, err = repo.FindWithDueRetries(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGormNotificationRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	n := createNotification(t)
	n.EnsureDelivery(notification.ChannelInApp)
	require.NoError(t, repo.Save(ctx, n))

	stale, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)

	require.NoError(t, n.MarkSent(notification.ChannelInApp))
	n.ClearDomainEvents()
	require.NoError(t, repo.SaveWithLock(ctx, n))
	assert.Equal(t, 2, n.Version)

	require.NoError(t, stale.MarkSent(notification.ChannelInApp))
	stale.ClearDomainEvents()
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

	// delivery status from the winning save is what persists
	found, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, found.Deliveries, 1)
	assert.Equal(t, notification.DeliveryStatusSent, found.Deliveries[0].Status)
}

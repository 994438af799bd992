package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by its ID, loading its deliveries
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).
		Preload("Deliveries").
		First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// FindByTarget returns notifications for an actor, newest first
func (r *GormNotificationRepository) FindByTarget(ctx context.Context, actorID uuid.UUID, limit int) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	if err := r.db.WithContext(ctx).
		Preload("Deliveries").
		Where("target_actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindByReference returns notifications about a given aggregate
func (r *GormNotificationRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	if err := r.db.WithContext(ctx).
		Preload("Deliveries").
		Where("reference_id = ?", referenceID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindWithDueRetries returns notifications holding at least one pending
// delivery whose retry time is at or before now
func (r *GormNotificationRepository) FindWithDueRetries(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&notification.ChannelDelivery{}).
		Where("status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			notification.DeliveryStatusPending, now).
		Limit(limit).
		Distinct("notification_id").
		Pluck("notification_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var notifications []*notification.Notification
	if err := r.db.WithContext(ctx).
		Preload("Deliveries").
		Where("id IN ?", ids).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// Save creates or updates a notification and its deliveries
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Deliveries").Save(n).Error; err != nil {
			return err
		}
		return saveDeliveries(tx, n)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormNotificationRepository) SaveWithLock(ctx context.Context, n *notification.Notification) error {
	loadedVersion := n.Version
	n.Version++
	n.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&notification.Notification{}).
			Where("id = ? AND version = ?", n.ID, loadedVersion).
			Updates(map[string]interface{}{
				"priority":   n.Priority,
				"title":      n.Title,
				"body":       n.Body,
				"version":    n.Version,
				"updated_at": n.UpdatedAt,
			})

		if result.Error != nil {
			n.Version = loadedVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			n.Version = loadedVersion
			return shared.ErrConcurrencyConflict
		}

		return saveDeliveries(tx, n)
	})
}

// saveDeliveries upserts the delivery rows. Deliveries are never removed from
// an aggregate; cancellation is a status, not a deletion.
func saveDeliveries(tx *gorm.DB, n *notification.Notification) error {
	for i := range n.Deliveries {
		n.Deliveries[i].NotificationID = n.ID
		if err := tx.Save(&n.Deliveries[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormNotificationRepository implements NotificationRepository
var _ notification.NotificationRepository = (*GormNotificationRepository)(nil)

package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationRepository defines the persistence operations for
// notifications and their channel deliveries
type NotificationRepository interface {
	// FindByID loads a notification with its deliveries
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByTarget returns notifications for an actor, newest first
	FindByTarget(ctx context.Context, actorID uuid.UUID, limit int) ([]*Notification, error)

	// FindByReference returns notifications about a given aggregate
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*Notification, error)

	// FindWithDueRetries returns notifications holding at least one pending
	// delivery whose retry time is at or before now. Consumed by the retry
	// sweep.
	FindWithDueRetries(ctx context.Context, now time.Time, limit int) ([]*Notification, error)

	// Save persists the notification and its deliveries
	Save(ctx context.Context, n *Notification) error

	// SaveWithLock persists using optimistic locking and returns
	// shared.ErrConcurrencyConflict when the stored version has moved on
	SaveWithLock(ctx context.Context, n *Notification) error
}

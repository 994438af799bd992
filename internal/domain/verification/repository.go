package verification

import (
	"context"

	"github.com/google/uuid"
)

// TaskRepository defines the persistence operations for verification tasks
type TaskRepository interface {
	// FindByID loads a task with its findings
	FindByID(ctx context.Context, id uuid.UUID) (*VerificationTask, error)

	// FindByProperty returns all tasks for a property, newest first
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*VerificationTask, error)

	// FindOpenByProperty returns non-terminal tasks for a property
	FindOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*VerificationTask, error)

	// CountOpenByVerifierAndProperty counts non-terminal tasks held by the
	// verifier for the property. The assignment path uses it to keep at most
	// one open task per verifier per property.
	CountOpenByVerifierAndProperty(ctx context.Context, verifierID, propertyID uuid.UUID) (int64, error)

	// FindPending returns unassigned tasks oldest first, for work queues
	FindPending(ctx context.Context, limit int) ([]*VerificationTask, error)

	// Save persists the task and its findings
	Save(ctx context.Context, task *VerificationTask) error

	// SaveWithLock persists the task using optimistic locking and returns
	// shared.ErrConcurrencyConflict when the stored version has moved on
	SaveWithLock(ctx context.Context, task *VerificationTask) error
}

package verification

import (
	"context"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/verification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyCacheInvalidator evicts a property's cached projections after a
// verification outcome mutates the property.
type PropertyCacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

// VerificationService coordinates the property verification workflow:
// assignment, inspection progress, and feeding the outcome back to the
// property. Outcome transitions touch task and property in one transaction.
type VerificationService struct {
	taskRepo       verification.TaskRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	propertyCache  PropertyCacheInvalidator
	logger         *zap.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(taskRepo verification.TaskRepository, txScope TransactionScope, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		taskRepo: taskRepo,
		txScope:  txScope,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *VerificationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPropertyCache sets the cache to invalidate when an outcome mutates the
// property
func (s *VerificationService) SetPropertyCache(cache PropertyCacheInvalidator) {
	s.propertyCache = cache
}

func (s *VerificationService) invalidateProperty(ctx context.Context, propertyID uuid.UUID) {
	if s.propertyCache != nil {
		s.propertyCache.Invalidate(ctx, propertyID)
	}
}

// Assign hands a pending task to a verifier. A verifier holding another open
// task for the same property is rejected; an idle one is required.
func (s *VerificationService) Assign(ctx context.Context, actor identity.Actor, taskID, verifierID uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	open, err := s.taskRepo.CountOpenByVerifierAndProperty(ctx, verifierID, task.PropertyID)
	if err != nil {
		return err
	}
	if open > 0 {
		return shared.NewDomainError("VERIFIER_BUSY",
			"Verifier already holds an open task for this property")
	}

	if err := task.Assign(actor, verifierID); err != nil {
		return err
	}
	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return err
	}

	s.publishTaskEvents(ctx, task)

	s.logger.Info("verification task assigned",
		zap.String("task_id", task.ID.String()),
		zap.String("verifier_id", verifierID.String()),
	)

	return nil
}

// Unassign returns an assigned task to the pool
func (s *VerificationService) Unassign(ctx context.Context, actor identity.Actor, taskID uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := task.Unassign(actor); err != nil {
		return err
	}
	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return err
	}

	s.publishTaskEvents(ctx, task)

	return nil
}

// Start begins the inspection and moves the property's verification status
// to in progress within the same commit
func (s *VerificationService) Start(ctx context.Context, actor identity.Actor, taskID uuid.UUID) error {
	var task *verification.VerificationTask
	var property *listing.Property

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		task, err = repos.TaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := task.Start(actor); err != nil {
			return err
		}

		property, err = repos.PropertyRepo().FindByID(ctx, task.PropertyID)
		if err != nil {
			return err
		}
		moved, err := ensureVerificationInProgress(property)
		if err != nil {
			return err
		}
		if moved {
			if err := repos.PropertyRepo().SaveWithLock(ctx, property); err != nil {
				return err
			}
		}

		return repos.TaskRepo().SaveWithLock(ctx, task)
	})
	if err != nil {
		return err
	}

	s.invalidateProperty(ctx, property.ID)
	s.publishTaskEvents(ctx, task)
	s.publishPropertyEvents(ctx, property)

	return nil
}

// Complete records the inspection outcome and propagates it to the property:
// a clean pass verifies the property, failed checks reject it.
func (s *VerificationService) Complete(ctx context.Context, actor identity.Actor, taskID uuid.UUID, score int, findings []verification.Finding) error {
	var task *verification.VerificationTask
	var property *listing.Property

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		task, err = repos.TaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := task.Complete(actor, score, findings); err != nil {
			return err
		}

		property, err = repos.PropertyRepo().FindByID(ctx, task.PropertyID)
		if err != nil {
			return err
		}
		if _, err := ensureVerificationInProgress(property); err != nil {
			return err
		}
		if err := property.CompleteVerification(task.Passed()); err != nil {
			return err
		}

		if err := repos.PropertyRepo().SaveWithLock(ctx, property); err != nil {
			return err
		}
		return repos.TaskRepo().SaveWithLock(ctx, task)
	})
	if err != nil {
		return err
	}

	s.invalidateProperty(ctx, property.ID)
	s.publishTaskEvents(ctx, task)
	s.publishPropertyEvents(ctx, property)

	s.logger.Info("verification task completed",
		zap.String("task_id", task.ID.String()),
		zap.Bool("passed", task.Passed()),
		zap.Int("score", score),
	)

	return nil
}

// Reject closes the task without a passing outcome and marks the property's
// verification rejected
func (s *VerificationService) Reject(ctx context.Context, actor identity.Actor, taskID uuid.UUID, reason string) error {
	var task *verification.VerificationTask
	var property *listing.Property

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		task, err = repos.TaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := task.Reject(actor, reason); err != nil {
			return err
		}

		property, err = repos.PropertyRepo().FindByID(ctx, task.PropertyID)
		if err != nil {
			return err
		}
		// a task rejected straight from assigned never started the property's
		// verification; move it forward so the rejection can land
		if _, err := ensureVerificationInProgress(property); err != nil {
			return err
		}
		if err := property.CompleteVerification(false); err != nil {
			return err
		}

		if err := repos.PropertyRepo().SaveWithLock(ctx, property); err != nil {
			return err
		}
		return repos.TaskRepo().SaveWithLock(ctx, task)
	})
	if err != nil {
		return err
	}

	s.invalidateProperty(ctx, property.ID)
	s.publishTaskEvents(ctx, task)
	s.publishPropertyEvents(ctx, property)

	return nil
}

// GetByID retrieves a verification task
func (s *VerificationService) GetByID(ctx context.Context, taskID uuid.UUID) (*verification.VerificationTask, error) {
	return s.taskRepo.FindByID(ctx, taskID)
}

// ListPending retrieves unassigned tasks for the work queue
func (s *VerificationService) ListPending(ctx context.Context, limit int) ([]*verification.VerificationTask, error) {
	return s.taskRepo.FindPending(ctx, limit)
}

// ensureVerificationInProgress walks the property's verification status to
// in progress, resetting a prior rejection when a new task runs. Returns
// whether the property changed.
func ensureVerificationInProgress(property *listing.Property) (bool, error) {
	if property.VerificationStatus == listing.VerificationInProgress {
		return false, nil
	}
	if property.VerificationStatus == listing.VerificationRejected {
		if err := property.ResetVerification(); err != nil {
			return false, err
		}
	}
	if err := property.StartVerification(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *VerificationService) publishTaskEvents(ctx context.Context, task *verification.VerificationTask) {
	if s.eventPublisher == nil || task == nil {
		return
	}
	for _, event := range task.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	task.ClearDomainEvents()
}

func (s *VerificationService) publishPropertyEvents(ctx context.Context, property *listing.Property) {
	if s.eventPublisher == nil || property == nil {
		return
	}
	for _, event := range property.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	property.ClearDomainEvents()
}

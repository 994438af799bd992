package verification

import (
	"context"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/verification"
	"go.uber.org/zap"
)

// PropertyCreatedHandler opens a verification task for every newly listed
// property. Redelivery is guarded by checking for an existing open task.
type PropertyCreatedHandler struct {
	taskRepo verification.TaskRepository
	logger   *zap.Logger
}

// NewPropertyCreatedHandler creates a new PropertyCreatedHandler
func NewPropertyCreatedHandler(taskRepo verification.TaskRepository, logger *zap.Logger) *PropertyCreatedHandler {
	return &PropertyCreatedHandler{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PropertyCreatedHandler) EventTypes() []string {
	return []string{listing.EventTypePropertyCreated}
}

// Handle creates the initial verification task for the property
func (h *PropertyCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*listing.PropertyCreatedEvent)
	if !ok {
		return nil
	}

	open, err := h.taskRepo.FindOpenByProperty(ctx, e.PropertyID)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		// redelivered creation event; task already exists
		return nil
	}

	task, err := verification.NewVerificationTask(e.PropertyID)
	if err != nil {
		return err
	}
	if err := h.taskRepo.Save(ctx, task); err != nil {
		return err
	}

	h.logger.Info("verification task opened for new property",
		zap.String("task_id", task.ID.String()),
		zap.String("property_id", e.PropertyID.String()),
	)

	return nil
}

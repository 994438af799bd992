package notification

import (
	"context"
	"fmt"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/verification"
	"go.uber.org/zap"
)

// TaskCompletedNotificationHandler tells the property owner how the
// verification of their listing concluded
type TaskCompletedNotificationHandler struct {
	dispatcher   Dispatcher
	propertyRepo listing.PropertyRepository
	logger       *zap.Logger
}

// NewTaskCompletedNotificationHandler creates a new TaskCompletedNotificationHandler
func NewTaskCompletedNotificationHandler(dispatcher Dispatcher, propertyRepo listing.PropertyRepository, logger *zap.Logger) *TaskCompletedNotificationHandler {
	return &TaskCompletedNotificationHandler{
		dispatcher:   dispatcher,
		propertyRepo: propertyRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TaskCompletedNotificationHandler) EventTypes() []string {
	return []string{verification.EventTypeTaskCompleted}
}

// Handle notifies the property owner of the verification outcome
func (h *TaskCompletedNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*verification.TaskCompletedEvent)
	if !ok {
		return nil
	}

	property, err := h.propertyRepo.FindByID(ctx, e.PropertyID)
	if err != nil {
		return err
	}

	title := "Property verification passed"
	body := fmt.Sprintf("Verification of %q completed with a quality score of %d. The property can now be listed.",
		property.Title, e.QualityScore)
	priority := notification.PriorityNormal
	if !e.Passed {
		title = "Property verification failed"
		body = fmt.Sprintf("Verification of %q found issues. Review the findings and resubmit.", property.Title)
		priority = notification.PriorityHigh
	}

	return h.dispatcher.Notify(ctx, property.OwnerID,
		notification.TypeVerificationDone, priority, title, body, e.PropertyID)
}

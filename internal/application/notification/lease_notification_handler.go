package notification

import (
	"context"
	"fmt"

	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher is the notification surface the event handlers depend on
type Dispatcher interface {
	Notify(ctx context.Context, target uuid.UUID, nType notification.NotificationType,
		priority notification.Priority, title, body string, reference uuid.UUID) error
	CancelByReference(ctx context.Context, referenceID uuid.UUID) (int, error)
}

// LeaseNotificationHandler turns lease lifecycle events into notifications
// for the tenant and the owner. Termination additionally cancels any still
// pending messages about the lease, such as queued expiry reminders.
type LeaseNotificationHandler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewLeaseNotificationHandler creates a new LeaseNotificationHandler
func NewLeaseNotificationHandler(dispatcher Dispatcher, logger *zap.Logger) *LeaseNotificationHandler {
	return &LeaseNotificationHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LeaseNotificationHandler) EventTypes() []string {
	return []string{
		leasing.EventTypeLeaseActivated,
		leasing.EventTypeLeaseTerminated,
		leasing.EventTypeLeaseExpired,
	}
}

// Handle fans the lifecycle change out to the lease parties
func (h *LeaseNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *leasing.LeaseActivatedEvent:
		return h.onActivated(ctx, e)
	case *leasing.LeaseTerminatedEvent:
		return h.onTerminated(ctx, e)
	case *leasing.LeaseExpiredEvent:
		return h.onExpired(ctx, e)
	default:
		return nil
	}
}

func (h *LeaseNotificationHandler) onActivated(ctx context.Context, e *leasing.LeaseActivatedEvent) error {
	title := "Lease activated"
	body := fmt.Sprintf("Your lease runs from %s to %s at a monthly rent of %s.",
		e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"), e.MonthlyRent.StringFixed(2))

	return h.notifyParties(ctx, e.TenantID, e.OwnerID,
		notification.TypeLeaseActivated, notification.PriorityNormal, title, body, e.LeaseID)
}

func (h *LeaseNotificationHandler) onTerminated(ctx context.Context, e *leasing.LeaseTerminatedEvent) error {
	cancelled, err := h.dispatcher.CancelByReference(ctx, e.LeaseID)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		h.logger.Info("cancelled pending notifications for terminated lease",
			zap.String("lease_id", e.LeaseID.String()),
			zap.Int("cancelled", cancelled),
		)
	}

	// a draft or pending lease being discarded is not worth a message
	if !e.WasActive {
		return nil
	}

	title := "Lease terminated"
	body := "Your lease has been terminated."
	if e.Reason != "" {
		body = fmt.Sprintf("Your lease has been terminated: %s", e.Reason)
	}

	return h.notifyParties(ctx, e.TenantID, e.OwnerID,
		notification.TypeLeaseTerminated, notification.PriorityHigh, title, body, e.LeaseID)
}

func (h *LeaseNotificationHandler) onExpired(ctx context.Context, e *leasing.LeaseExpiredEvent) error {
	title := "Lease expired"
	body := "Your lease has reached its end date and is now expired."

	return h.notifyParties(ctx, e.TenantID, e.OwnerID,
		notification.TypeLeaseExpired, notification.PriorityNormal, title, body, e.LeaseID)
}

func (h *LeaseNotificationHandler) notifyParties(ctx context.Context, tenantID, ownerID uuid.UUID,
	nType notification.NotificationType, priority notification.Priority, title, body string, leaseID uuid.UUID) error {

	if err := h.dispatcher.Notify(ctx, tenantID, nType, priority, title, body, leaseID); err != nil {
		return err
	}
	return h.dispatcher.Notify(ctx, ownerID, nType, priority, title, body, leaseID)
}

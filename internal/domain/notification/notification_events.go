package notification

import (
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeNotification = "Notification"

// Event type constants
const (
	EventTypeNotificationCreated   = "NotificationCreated"
	EventTypeChannelSent           = "NotificationChannelSent"
	EventTypeChannelFailed         = "NotificationChannelFailed"
	EventTypeNotificationCancelled = "NotificationCancelled"
)

// NotificationCreatedEvent is raised when a logical notification is created
type NotificationCreatedEvent struct {
	shared.BaseDomainEvent
	NotificationID uuid.UUID        `json:"notification_id"`
	TargetActorID  uuid.UUID        `json:"target_actor_id"`
	MessageType    NotificationType `json:"message_type"`
}

// NewNotificationCreatedEvent creates a new NotificationCreatedEvent
func NewNotificationCreatedEvent(n *Notification) *NotificationCreatedEvent {
	return &NotificationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotificationCreated, AggregateTypeNotification, n.ID),
		NotificationID:  n.ID,
		TargetActorID:   n.TargetActorID,
		MessageType:     n.Type,
	}
}

// EventType returns the event type name
func (e *NotificationCreatedEvent) EventType() string {
	return EventTypeNotificationCreated
}

// ChannelSentEvent is raised when a channel adapter accepts the message
type ChannelSentEvent struct {
	shared.BaseDomainEvent
	NotificationID uuid.UUID `json:"notification_id"`
	Channel        Channel   `json:"channel"`
}

// NewChannelSentEvent creates a new ChannelSentEvent
func NewChannelSentEvent(n *Notification, channel Channel) *ChannelSentEvent {
	return &ChannelSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChannelSent, AggregateTypeNotification, n.ID),
		NotificationID:  n.ID,
		Channel:         channel,
	}
}

// EventType returns the event type name
func (e *ChannelSentEvent) EventType() string {
	return EventTypeChannelSent
}

// ChannelFailedEvent is raised when a channel exhausts its retries
type ChannelFailedEvent struct {
	shared.BaseDomainEvent
	NotificationID uuid.UUID `json:"notification_id"`
	Channel        Channel   `json:"channel"`
	Cause          string    `json:"cause"`
}

// NewChannelFailedEvent creates a new ChannelFailedEvent
func NewChannelFailedEvent(n *Notification, channel Channel, cause string) *ChannelFailedEvent {
	return &ChannelFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChannelFailed, AggregateTypeNotification, n.ID),
		NotificationID:  n.ID,
		Channel:         channel,
		Cause:           cause,
	}
}

// EventType returns the event type name
func (e *ChannelFailedEvent) EventType() string {
	return EventTypeChannelFailed
}

// NotificationCancelledEvent is raised when pending deliveries are cancelled
type NotificationCancelledEvent struct {
	shared.BaseDomainEvent
	NotificationID uuid.UUID `json:"notification_id"`
}

// NewNotificationCancelledEvent creates a new NotificationCancelledEvent
func NewNotificationCancelledEvent(n *Notification) *NotificationCancelledEvent {
	return &NotificationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotificationCancelled, AggregateTypeNotification, n.ID),
		NotificationID:  n.ID,
	}
}

// EventType returns the event type name
func (e *NotificationCancelledEvent) EventType() string {
	return EventTypeNotificationCancelled
}

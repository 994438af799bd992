package notification

import (
	"context"

	"github.com/google/uuid"
)

// Payload is what a channel adapter receives for one send
type Payload struct {
	NotificationID uuid.UUID
	TargetActorID  uuid.UUID
	Type           NotificationType
	Priority       Priority
	Title          string
	Body           string
}

// ChannelAdapter is the external delivery capability for one channel. An
// adapter either accepts the message or returns an error; it never retries
// internally, retry policy lives in the dispatcher.
type ChannelAdapter interface {
	Channel() Channel
	Send(ctx context.Context, payload Payload) error
}

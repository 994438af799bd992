package channels

import (
	"context"

	"go.uber.org/zap"

	"github.com/estate/backend/internal/domain/notification"
)

// InAppAdapter delivers to the in-app inbox. The persisted notification row
// is the inbox entry itself, so accepting a send only means the row is in
// place; there is no external hop that can fail.
type InAppAdapter struct {
	logger *zap.Logger
}

// NewInAppAdapter creates a new in-app adapter
func NewInAppAdapter(logger *zap.Logger) *InAppAdapter {
	return &InAppAdapter{logger: logger}
}

// Channel returns the channel this adapter handles
func (a *InAppAdapter) Channel() notification.Channel {
	return notification.ChannelInApp
}

// Send accepts the message for the in-app inbox
func (a *InAppAdapter) Send(ctx context.Context, payload notification.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.logger.Debug("in-app message accepted",
		zap.String("notification_id", payload.NotificationID.String()),
		zap.String("target_actor_id", payload.TargetActorID.String()),
	)
	return nil
}

// Ensure InAppAdapter implements ChannelAdapter
var _ notification.ChannelAdapter = (*InAppAdapter)(nil)

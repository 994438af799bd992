package notification

import (
	"context"
	"time"

	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DispatchOptions tune retry policy and channel fan-out
type DispatchOptions struct {
	// MaxAttempts is the per-channel attempt ceiling before the delivery
	// goes terminally failed
	MaxAttempts int
	// BackoffBase is the first retry delay; it doubles per prior attempt
	BackoffBase time.Duration
	// Channels is the default fan-out for a dispatched notification
	Channels []notification.Channel
}

// DefaultDispatchOptions returns the production retry policy
func DefaultDispatchOptions() DispatchOptions {
	return DispatchOptions{
		MaxAttempts: 5,
		BackoffBase: time.Minute,
		Channels:    []notification.Channel{notification.ChannelInApp, notification.ChannelEmail},
	}
}

// DispatchService fans a notification out across channels, persists the
// delivery state before any send attempt, and drives retries with
// exponential backoff. One delivery row exists per channel regardless of
// how many times a message is dispatched.
type DispatchService struct {
	repo           notification.NotificationRepository
	adapters       map[notification.Channel]notification.ChannelAdapter
	eventPublisher shared.EventPublisher
	opts           DispatchOptions
	logger         *zap.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(repo notification.NotificationRepository, adapters []notification.ChannelAdapter, opts DispatchOptions, logger *zap.Logger) *DispatchService {
	byChannel := make(map[notification.Channel]notification.ChannelAdapter, len(adapters))
	for _, a := range adapters {
		byChannel[a.Channel()] = a
	}
	return &DispatchService{
		repo:     repo,
		adapters: byChannel,
		opts:     opts,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DispatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Notify creates and dispatches a notification in one call. A zero reference
// means the message is not about any particular aggregate. Implements the
// notifier hook the lease sweeps use.
func (s *DispatchService) Notify(ctx context.Context, target uuid.UUID, nType notification.NotificationType,
	priority notification.Priority, title, body string, reference uuid.UUID) error {

	n, err := notification.NewNotification(target, nType, priority, title, body)
	if err != nil {
		return err
	}
	if reference != uuid.Nil {
		n.WithReference(reference)
	}
	return s.Dispatch(ctx, n)
}

// Dispatch persists the notification with a pending delivery per configured
// channel, then attempts each send. The durable save happens first so a
// crash mid-send loses no deliveries, only delays them to the retry sweep.
func (s *DispatchService) Dispatch(ctx context.Context, n *notification.Notification) error {
	for _, ch := range s.opts.Channels {
		n.EnsureDelivery(ch)
	}

	if err := s.repo.Save(ctx, n); err != nil {
		return err
	}

	s.attemptDue(ctx, n, time.Now())

	if err := s.repo.SaveWithLock(ctx, n); err != nil {
		return err
	}

	s.publishEvents(ctx, n)

	return nil
}

// RetrySweep attempts every delivery whose backoff has elapsed. Returns the
// number of notifications touched. A concurrency conflict on one
// notification skips it; the next sweep picks it up again.
func (s *DispatchService) RetrySweep(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.repo.FindWithDueRetries(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	touched := 0
	for _, n := range due {
		if s.attemptDue(ctx, n, now) == 0 {
			continue
		}
		if err := s.repo.SaveWithLock(ctx, n); err != nil {
			s.logger.Warn("retry sweep skipped notification",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.publishEvents(ctx, n)
		touched++
	}

	return touched, nil
}

// CancelByReference cancels every pending delivery of notifications about
// the given aggregate. Used when the subject reached a state that makes the
// messages moot, such as a lease terminating before its expiry reminders
// went out.
func (s *DispatchService) CancelByReference(ctx context.Context, referenceID uuid.UUID) (int, error) {
	notifications, err := s.repo.FindByReference(ctx, referenceID)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, n := range notifications {
		if n.Cancel() == 0 {
			continue
		}
		if err := s.repo.SaveWithLock(ctx, n); err != nil {
			s.logger.Warn("failed to cancel notification",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.publishEvents(ctx, n)
		cancelled++
	}

	return cancelled, nil
}

// MarkDelivered records a channel delivery receipt callback
func (s *DispatchService) MarkDelivered(ctx context.Context, notificationID uuid.UUID, channel notification.Channel) error {
	return s.mutate(ctx, notificationID, func(n *notification.Notification) error {
		return n.MarkDelivered(channel)
	})
}

// MarkRead records the target actor reading the message
func (s *DispatchService) MarkRead(ctx context.Context, notificationID uuid.UUID, channel notification.Channel) error {
	return s.mutate(ctx, notificationID, func(n *notification.Notification) error {
		return n.MarkRead(channel)
	})
}

// ListForActor returns an actor's notifications, newest first
func (s *DispatchService) ListForActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*notification.Notification, error) {
	return s.repo.FindByTarget(ctx, actorID, limit)
}

// attemptDue sends every delivery that is due, recording outcomes on the
// aggregate. Returns the number of attempts made.
func (s *DispatchService) attemptDue(ctx context.Context, n *notification.Notification, now time.Time) int {
	payload := notification.Payload{
		NotificationID: n.ID,
		TargetActorID:  n.TargetActorID,
		Type:           n.Type,
		Priority:       n.Priority,
		Title:          n.Title,
		Body:           n.Body,
	}

	attempts := 0
	for i := range n.Deliveries {
		d := &n.Deliveries[i]
		if !d.RetryDue(now) {
			continue
		}

		adapter, ok := s.adapters[d.Channel]
		if !ok {
			if err := n.MarkFailed(d.Channel, "no adapter registered", s.opts.MaxAttempts, s.opts.BackoffBase); err != nil {
				s.logger.Warn("failed to record missing adapter",
					zap.String("channel", d.Channel.String()),
					zap.Error(err),
				)
			}
			attempts++
			continue
		}

		if err := adapter.Send(ctx, payload); err != nil {
			s.logger.Warn("channel send failed",
				zap.String("notification_id", n.ID.String()),
				zap.String("channel", d.Channel.String()),
				zap.Int("attempt", d.Attempts+1),
				zap.Error(err),
			)
			if markErr := n.MarkFailed(d.Channel, err.Error(), s.opts.MaxAttempts, s.opts.BackoffBase); markErr != nil {
				s.logger.Warn("failed to record send failure", zap.Error(markErr))
			}
		} else {
			if markErr := n.MarkSent(d.Channel); markErr != nil {
				s.logger.Warn("failed to record send success", zap.Error(markErr))
			}
		}
		attempts++
	}

	return attempts
}

func (s *DispatchService) mutate(ctx context.Context, id uuid.UUID, fn func(*notification.Notification) error) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(n); err != nil {
		return err
	}
	if err := s.repo.SaveWithLock(ctx, n); err != nil {
		return err
	}
	s.publishEvents(ctx, n)
	return nil
}

func (s *DispatchService) publishEvents(ctx context.Context, n *notification.Notification) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range n.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	n.ClearDomainEvents()
}

package leasing

import (
	"context"
	"fmt"
	"time"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier hands a message to the notification dispatcher. The sweep only
// needs durable enqueueing; delivery runs on its own retry schedule.
type Notifier interface {
	Notify(ctx context.Context, target uuid.UUID, nType notification.NotificationType,
		priority notification.Priority, title, body string, reference uuid.UUID) error
}

// SweepServiceOptions tune the periodic sweep batches
type SweepServiceOptions struct {
	// BatchSize caps how many aggregates one sweep pass touches
	BatchSize int
	// ExpiryReminderWindow is how far ahead the expiring-soon reminder looks
	ExpiryReminderWindow time.Duration
}

// DefaultSweepServiceOptions returns the default sweep tuning
func DefaultSweepServiceOptions() SweepServiceOptions {
	return SweepServiceOptions{
		BatchSize:            100,
		ExpiryReminderWindow: 30 * 24 * time.Hour,
	}
}

// SweepService runs the time-driven parts of the lease lifecycle: expiring
// leases past their end date, flipping pending periods to overdue, and
// reminding tenants of upcoming expiry. Each aggregate is swept under the
// same optimistic-locking discipline as request-driven transitions; a
// conflict means a concurrent request won and the item is picked up again on
// the next tick.
type SweepService struct {
	txScope        TransactionScope
	leaseRepo      leasing.LeaseRepository
	periodRepo     leasing.RentPaymentPeriodRepository
	notifier       Notifier
	eventPublisher shared.EventPublisher
	propertyCache  PropertyCacheInvalidator
	opts           SweepServiceOptions
	logger         *zap.Logger
}

// NewSweepService creates a new SweepService
func NewSweepService(
	txScope TransactionScope,
	leaseRepo leasing.LeaseRepository,
	periodRepo leasing.RentPaymentPeriodRepository,
	opts SweepServiceOptions,
	logger *zap.Logger,
) *SweepService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultSweepServiceOptions().BatchSize
	}
	if opts.ExpiryReminderWindow <= 0 {
		opts.ExpiryReminderWindow = DefaultSweepServiceOptions().ExpiryReminderWindow
	}
	return &SweepService{
		txScope:    txScope,
		leaseRepo:  leaseRepo,
		periodRepo: periodRepo,
		opts:       opts,
		logger:     logger,
	}
}

// SetNotifier sets the notification dispatcher hook
func (s *SweepService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SweepService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPropertyCache sets the cache to invalidate when an expiry releases a
// property
func (s *SweepService) SetPropertyCache(cache PropertyCacheInvalidator) {
	s.propertyCache = cache
}

// ExpireLeases moves active leases past their end date to expired and
// releases their properties. Failures are per-lease; one bad lease never
// stalls the batch. Returns the number of leases expired.
func (s *SweepService) ExpireLeases(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.leaseRepo.FindExpiredActive(ctx, leasing.DateOnly(now), s.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range candidates {
		if err := s.expireOne(ctx, candidate.ID, now); err != nil {
			s.logger.Warn("lease expiry sweep item failed",
				zap.String("lease_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("lease expiry sweep completed",
			zap.Int("expired", expired),
			zap.Int("candidates", len(candidates)),
		)
	}

	return expired, nil
}

func (s *SweepService) expireOne(ctx context.Context, leaseID uuid.UUID, now time.Time) error {
	var lease *leasing.Lease

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lease, err = repos.LeaseRepo().FindByID(ctx, leaseID)
		if err != nil {
			return err
		}

		if err := lease.Expire(now); err != nil {
			return err
		}

		property, err := repos.PropertyRepo().FindByID(ctx, lease.PropertyID)
		if err != nil {
			return err
		}
		if err := property.Release(identity.SystemActor(), lease.ID); err != nil {
			return err
		}

		if err := repos.PropertyRepo().SaveWithLock(ctx, property); err != nil {
			return err
		}
		return repos.LeaseRepo().SaveWithLock(ctx, lease)
	})
	if err != nil {
		return err
	}

	if s.propertyCache != nil {
		s.propertyCache.Invalidate(ctx, lease.PropertyID)
	}
	s.publishEvents(ctx, lease)

	return nil
}

// MarkOverduePeriods flips pending periods past their due date to overdue
// and notifies the tenant. Returns the number of periods flipped.
func (s *SweepService) MarkOverduePeriods(ctx context.Context, now time.Time) (int, error) {
	due, err := s.periodRepo.FindDuePending(ctx, leasing.DateOnly(now), s.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for _, period := range due {
		if !period.MarkOverdue(now) {
			continue
		}
		// conditional flip: a period paid since the candidate query ran
		// no longer matches pending and is left alone
		if err := s.periodRepo.MarkOverdue(ctx, period.ID, now); err != nil {
			if shared.IsConcurrencyConflict(err) {
				s.logger.Debug("overdue sweep lost to a concurrent payment",
					zap.String("period_id", period.ID.String()),
				)
			} else {
				s.logger.Warn("overdue sweep item failed",
					zap.String("period_id", period.ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		flipped++

		s.notifyOverdue(ctx, period)
	}

	if flipped > 0 {
		s.logger.Info("overdue sweep completed", zap.Int("flipped", flipped))
	}

	return flipped, nil
}

func (s *SweepService) notifyOverdue(ctx context.Context, period *leasing.RentPaymentPeriod) {
	if s.notifier == nil {
		return
	}

	lease, err := s.leaseRepo.FindByID(ctx, period.LeaseID)
	if err != nil {
		s.logger.Warn("could not resolve lease for overdue notification",
			zap.String("lease_id", period.LeaseID.String()),
			zap.Error(err),
		)
		return
	}

	body := fmt.Sprintf("Rent of %s for the period starting %s is overdue.",
		period.AmountDue.StringFixed(2), period.PeriodStart.Format("2006-01-02"))
	if err := s.notifier.Notify(ctx, lease.TenantID, notification.TypeRentOverdue,
		notification.PriorityHigh, "Rent payment overdue", body, lease.ID); err != nil {
		s.logger.Warn("overdue notification enqueue failed",
			zap.String("lease_id", lease.ID.String()),
			zap.Error(err),
		)
	}
}

// RemindExpiringSoon notifies tenants of leases ending within the reminder
// window. Each lease is reminded once; the sent marker is persisted so the
// next tick skips it. Returns the number of reminders enqueued.
func (s *SweepService) RemindExpiringSoon(ctx context.Context, now time.Time) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}

	expiring, err := s.leaseRepo.FindExpiringSoon(ctx, leasing.DateOnly(now), s.opts.ExpiryReminderWindow, s.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, lease := range expiring {
		if lease.ExpiryReminderSentAt != nil {
			continue
		}
		body := fmt.Sprintf("Your lease ends on %s. Contact the owner to renew.",
			lease.EndDate.Format("2006-01-02"))
		if err := s.notifier.Notify(ctx, lease.TenantID, notification.TypeLeaseExpiringSoon,
			notification.PriorityNormal, "Lease expiring soon", body, lease.ID); err != nil {
			s.logger.Warn("expiry reminder enqueue failed",
				zap.String("lease_id", lease.ID.String()),
				zap.Error(err),
			)
			continue
		}

		lease.MarkExpiryReminderSent(now)
		if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
			s.logger.Warn("could not record expiry reminder",
				zap.String("lease_id", lease.ID.String()),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	return sent, nil
}

func (s *SweepService) publishEvents(ctx context.Context, aggregate eventCarrier) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	aggregate.ClearDomainEvents()
}

package leasing

import (
	"context"
	"fmt"

	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleHandler maintains the rent payment schedule in response to lease
// lifecycle events: activation generates the schedule, a terms change
// regenerates the unsettled tail. It runs after the triggering transition
// committed and is idempotent, so an event redelivery never duplicates
// periods.
type ScheduleHandler struct {
	leaseRepo leasing.LeaseRepository
	logger    *zap.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(leaseRepo leasing.LeaseRepository, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		leaseRepo: leaseRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ScheduleHandler) EventTypes() []string {
	return []string{
		leasing.EventTypeLeaseActivated,
		leasing.EventTypeLeaseTermsChanged,
	}
}

// Handle generates or regenerates the schedule for the lease the event is about
func (h *ScheduleHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *leasing.LeaseActivatedEvent:
		return h.generate(ctx, e.LeaseID)
	case *leasing.LeaseTermsChangedEvent:
		return h.regenerate(ctx, e.LeaseID)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *ScheduleHandler) generate(ctx context.Context, leaseID uuid.UUID) error {
	lease, err := h.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return err
	}

	// redelivered activation event; schedule already exists
	if len(lease.Periods) > 0 {
		h.logger.Debug("schedule already generated, skipping",
			zap.String("lease_id", leaseID.String()),
		)
		return nil
	}

	lease.Periods = leasing.GenerateSchedule(lease)
	if err := h.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return err
	}

	h.logger.Info("rent schedule generated",
		zap.String("lease_id", leaseID.String()),
		zap.Int("periods", len(lease.Periods)),
	)

	return nil
}

func (h *ScheduleHandler) regenerate(ctx context.Context, leaseID uuid.UUID) error {
	lease, err := h.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return err
	}

	periods, err := leasing.RegenerateSchedule(lease)
	if err != nil {
		// settled history no longer fits the lease terms; this needs manual
		// reconciliation, retrying the event will not help
		h.logger.Error("schedule regeneration failed",
			zap.String("lease_id", leaseID.String()),
			zap.Error(err),
		)
		return err
	}

	lease.Periods = periods
	if err := h.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return err
	}

	h.logger.Info("rent schedule regenerated",
		zap.String("lease_id", leaseID.String()),
		zap.Int("periods", len(periods)),
	)

	return nil
}

// Ensure ScheduleHandler implements shared.EventHandler
var _ shared.EventHandler = (*ScheduleHandler)(nil)

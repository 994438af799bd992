package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/estate/backend/internal/infrastructure/logger"
)

// LeaseSweeper runs the time-driven lease transitions
type LeaseSweeper interface {
	ExpireLeases(ctx context.Context, now time.Time) (int, error)
	MarkOverduePeriods(ctx context.Context, now time.Time) (int, error)
	RemindExpiringSoon(ctx context.Context, now time.Time) (int, error)
}

// NotificationSweeper retries pending channel deliveries that are due
type NotificationSweeper interface {
	RetrySweep(ctx context.Context, now time.Time, limit int) (int, error)
}

// SweepExecutor dispatches sweep jobs to the application services
type SweepExecutor struct {
	leases        LeaseSweeper
	notifications NotificationSweeper
	retryBatch    int
	logger        *zap.Logger
}

// NewSweepExecutor creates a new sweep executor. retryBatch caps how many
// notifications one retry sweep loads.
func NewSweepExecutor(
	leases LeaseSweeper,
	notifications NotificationSweeper,
	retryBatch int,
	logger *zap.Logger,
) *SweepExecutor {
	if retryBatch <= 0 {
		retryBatch = 100
	}
	return &SweepExecutor{
		leases:        leases,
		notifications: notifications,
		retryBatch:    retryBatch,
		logger:        logger,
	}
}

// Execute runs the sweep the job names and records how many items it touched
func (e *SweepExecutor) Execute(ctx context.Context, job *Job) error {
	var (
		processed int
		err       error
	)

	switch job.SweepType {
	case SweepLeaseExpiry:
		processed, err = e.leases.ExpireLeases(ctx, job.AsOf)
	case SweepRentOverdue:
		processed, err = e.leases.MarkOverduePeriods(ctx, job.AsOf)
	case SweepExpiryReminder:
		processed, err = e.leases.RemindExpiringSoon(ctx, job.AsOf)
	case SweepNotificationRetry:
		processed, err = e.notifications.RetrySweep(ctx, job.AsOf, e.retryBatch)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSweepType, job.SweepType)
	}

	if err != nil {
		return err
	}

	job.Complete(processed)

	if processed > 0 {
		// The scheduler tags the context logger with the sweep run id
		logger.FromContextOr(ctx, e.logger).Debug("Sweep pass touched items",
			zap.String("sweep_type", string(job.SweepType)),
			zap.Int("processed", processed),
		)
	}

	return nil
}

// Ensure SweepExecutor implements JobExecutor
var _ JobExecutor = (*SweepExecutor)(nil)

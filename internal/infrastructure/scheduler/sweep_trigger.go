package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweepTriggerConfig holds configuration for the periodic sweep trigger
type SweepTriggerConfig struct {
	// Interval is how often a full sweep pass is submitted
	Interval time.Duration
	// RunOnStart submits a pass immediately instead of waiting one interval
	RunOnStart bool
}

// DefaultSweepTriggerConfig returns default sweep trigger configuration
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		Interval:   time.Hour,
		RunOnStart: true,
	}
}

// SweepTrigger submits a full sweep pass to the scheduler on a fixed interval
type SweepTrigger struct {
	config    SweepTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepTrigger creates a new sweep trigger
func NewSweepTrigger(config SweepTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *SweepTrigger {
	if config.Interval <= 0 {
		config.Interval = DefaultSweepTriggerConfig().Interval
	}
	return &SweepTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts the sweep trigger
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)

	return nil
}

// Stop stops the sweep trigger
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop submits a sweep pass every interval
func (t *SweepTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.submitPass()
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.submitPass()
		}
	}
}

func (t *SweepTrigger) submitPass() {
	if err := t.scheduler.SchedulePass(time.Now()); err != nil {
		t.logger.Error("Failed to schedule sweep pass", zap.Error(err))
	}
}

// TriggerNow submits one sweep of the given type outside the regular interval
func (t *SweepTrigger) TriggerNow(sweepType SweepType) error {
	return t.scheduler.ScheduleSweep(sweepType, time.Now())
}

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLeaseSweeper returns fixed counts and records which sweep ran
type stubLeaseSweeper struct {
	expired  int
	overdue  int
	reminded int
	err      error
	calls    []string
}

func (s *stubLeaseSweeper) ExpireLeases(_ context.Context, _ time.Time) (int, error) {
	s.calls = append(s.calls, "expire")
	return s.expired, s.err
}

func (s *stubLeaseSweeper) MarkOverduePeriods(_ context.Context, _ time.Time) (int, error) {
	s.calls = append(s.calls, "overdue")
	return s.overdue, s.err
}

func (s *stubLeaseSweeper) RemindExpiringSoon(_ context.Context, _ time.Time) (int, error) {
	s.calls = append(s.calls, "remind")
	return s.reminded, s.err
}

type stubNotificationSweeper struct {
	retried   int
	err       error
	gotLimit  int
	gotCalled bool
}

func (s *stubNotificationSweeper) RetrySweep(_ context.Context, _ time.Time, limit int) (int, error) {
	s.gotCalled = true
	s.gotLimit = limit
	return s.retried, s.err
}

func TestSweepExecutor_DispatchesByType(t *testing.T) {
	tests := []struct {
		name      string
		sweepType SweepType
		wantCall  string
		processed int
	}{
		{"lease expiry", SweepLeaseExpiry, "expire", 2},
		{"rent overdue", SweepRentOverdue, "overdue", 5},
		{"expiry reminder", SweepExpiryReminder, "remind", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leases := &stubLeaseSweeper{expired: 2, overdue: 5, reminded: 1}
			notifications := &stubNotificationSweeper{}
			executor := NewSweepExecutor(leases, notifications, 50, newTestLogger())

			job := NewJob(tt.sweepType, time.Now(), 0)
			err := executor.Execute(context.Background(), job)

			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantCall}, leases.calls)
			assert.Equal(t, JobStatusSuccess, job.Status)
			assert.Equal(t, tt.processed, job.Processed)
			assert.False(t, notifications.gotCalled)
		})
	}
}

func TestSweepExecutor_NotificationRetryUsesBatchLimit(t *testing.T) {
	leases := &stubLeaseSweeper{}
	notifications := &stubNotificationSweeper{retried: 4}
	executor := NewSweepExecutor(leases, notifications, 25, newTestLogger())

	job := NewJob(SweepNotificationRetry, time.Now(), 0)
	err := executor.Execute(context.Background(), job)

	require.NoError(t, err)
	assert.True(t, notifications.gotCalled)
	assert.Equal(t, 25, notifications.gotLimit)
	assert.Equal(t, 4, job.Processed)
	assert.Empty(t, leases.calls)
}

func TestSweepExecutor_DefaultsRetryBatch(t *testing.T) {
	notifications := &stubNotificationSweeper{}
	executor := NewSweepExecutor(&stubLeaseSweeper{}, notifications, 0, newTestLogger())

	job := NewJob(SweepNotificationRetry, time.Now(), 0)
	require.NoError(t, executor.Execute(context.Background(), job))

	assert.Equal(t, 100, notifications.gotLimit)
}

func TestSweepExecutor_PropagatesSweepError(t *testing.T) {
	leases := &stubLeaseSweeper{err: errors.New("db unavailable")}
	executor := NewSweepExecutor(leases, &stubNotificationSweeper{}, 50, newTestLogger())

	job := NewJob(SweepLeaseExpiry, time.Now(), 0)
	err := executor.Execute(context.Background(), job)

	assert.Error(t, err)
	assert.NotEqual(t, JobStatusSuccess, job.Status)
}

func TestSweepExecutor_UnknownSweepType(t *testing.T) {
	executor := NewSweepExecutor(&stubLeaseSweeper{}, &stubNotificationSweeper{}, 50, newTestLogger())

	job := NewJob(SweepType("BOGUS"), time.Now(), 0)
	err := executor.Execute(context.Background(), job)

	assert.ErrorIs(t, err, ErrUnknownSweepType)
}

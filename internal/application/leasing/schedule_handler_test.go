package leasing

import (
	"context"
	"testing"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/leasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func activeLeaseForSchedule(t *testing.T) *leasing.Lease {
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	lease := newApprovedLease(t, uuid.New())
	require.NoError(t, lease.Activate(admin))
	lease.ClearDomainEvents()
	return lease
}

func TestScheduleHandler_Generate(t *testing.T) {
	t.Run("activation event produces the full schedule", func(t *testing.T) {
		leaseRepo := new(MockLeaseRepository)
		handler := NewScheduleHandler(leaseRepo, zap.NewNop())

		lease := activeLeaseForSchedule(t)
		leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
		leaseRepo.On("SaveWithLock", mock.Anything, lease).Return(nil)

		event := leasing.NewLeaseActivatedEvent(lease)
		require.NoError(t, handler.Handle(context.Background(), event))

		require.Len(t, lease.Periods, 12)
		assert.NoError(t, leasing.ValidateTiling(lease, lease.Periods))
		leaseRepo.AssertExpectations(t)
	})

	t.Run("redelivered activation event is a no-op", func(t *testing.T) {
		leaseRepo := new(MockLeaseRepository)
		handler := NewScheduleHandler(leaseRepo, zap.NewNop())

		lease := activeLeaseForSchedule(t)
		lease.Periods = leasing.GenerateSchedule(lease)
		existing := lease.Periods[0].ID

		leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)

		event := leasing.NewLeaseActivatedEvent(lease)
		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, existing, lease.Periods[0].ID)
		leaseRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestScheduleHandler_Regenerate(t *testing.T) {
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	t.Run("terms change rebuilds the unsettled tail", func(t *testing.T) {
		leaseRepo := new(MockLeaseRepository)
		handler := NewScheduleHandler(leaseRepo, zap.NewNop())

		lease := activeLeaseForSchedule(t)
		lease.Periods = leasing.GenerateSchedule(lease)
		require.NoError(t, lease.Periods[0].RecordPayment(lease.MonthlyCharge()))

		require.NoError(t, lease.UpdateTerms(admin, date(2025, 7, 10), decimal.NewFromInt(25000), lease.MaintenanceCharge))
		lease.ClearDomainEvents()

		leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
		leaseRepo.On("SaveWithLock", mock.Anything, lease).Return(nil)

		event := leasing.NewLeaseTermsChangedEvent(lease)
		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, leasing.PeriodStatusPaid, lease.Periods[0].Status)
		assert.NoError(t, leasing.ValidateTiling(lease, lease.Periods))
		assert.True(t, decimal.NewFromInt(27000).Equal(lease.Periods[1].AmountDue))
	})

	t.Run("inconsistent settled history surfaces the error", func(t *testing.T) {
		leaseRepo := new(MockLeaseRepository)
		handler := NewScheduleHandler(leaseRepo, zap.NewNop())

		lease := activeLeaseForSchedule(t)
		lease.Periods = leasing.GenerateSchedule(lease)
		// settle a later period while an earlier one is pending
		require.NoError(t, lease.Periods[3].RecordPayment(lease.MonthlyCharge()))

		leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)

		event := leasing.NewLeaseTermsChangedEvent(lease)
		err := handler.Handle(context.Background(), event)
		require.Error(t, err)
		var inconsistency *leasing.ScheduleInconsistencyError
		assert.ErrorAs(t, err, &inconsistency)
		leaseRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindByID finds a lease by its ID, loading its rent payment periods
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Periods", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&lease, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// FindByProperty finds all leases for a property, newest first
func (r *GormLeaseRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*leasing.Lease, error) {
	var leases []*leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Periods").
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindByTenant finds all leases where the given party is the tenant
func (r *GormLeaseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*leasing.Lease, error) {
	var leases []*leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Periods").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindActiveByProperty returns the active lease for a property
func (r *GormLeaseRepository) FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) (*leasing.Lease, error) {
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Periods", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("property_id = ? AND status = ?", propertyID, leasing.LeaseStatusActive).
		First(&lease).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// CountActiveByProperty counts active leases for a property
func (r *GormLeaseRepository) CountActiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&leasing.Lease{}).
		Where("property_id = ? AND status = ?", propertyID, leasing.LeaseStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindExpiredActive returns active leases whose end date passed before cutoff
func (r *GormLeaseRepository) FindExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]*leasing.Lease, error) {
	var leases []*leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Periods").
		Where("status = ? AND end_date < ?", leasing.LeaseStatusActive, leasing.DateOnly(cutoff)).
		Order("end_date ASC").
		Limit(limit).
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindExpiringSoon returns active leases ending within (cutoff, cutoff+window]
// that have not been reminded yet
func (r *GormLeaseRepository) FindExpiringSoon(ctx context.Context, cutoff time.Time, window time.Duration, limit int) ([]*leasing.Lease, error) {
	var leases []*leasing.Lease
	from := leasing.DateOnly(cutoff)
	to := leasing.DateOnly(cutoff.Add(window))
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_date > ? AND end_date <= ? AND expiry_reminder_sent_at IS NULL",
			leasing.LeaseStatusActive, from, to).
		Order("end_date ASC").
		Limit(limit).
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// Save creates or updates a lease and reconciles its periods
func (r *GormLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Periods").Save(lease).Error; err != nil {
			return err
		}
		return savePeriods(tx, lease)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	loadedVersion := lease.Version
	lease.Version++
	lease.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&leasing.Lease{}).
			Where("id = ? AND version = ?", lease.ID, loadedVersion).
			Updates(map[string]interface{}{
				"status":                  lease.Status,
				"approval_status":         lease.ApprovalStatus,
				"start_date":              lease.StartDate,
				"end_date":                lease.EndDate,
				"monthly_rent":            lease.MonthlyRent,
				"deposit":                 lease.Deposit,
				"maintenance_charge":      lease.MaintenanceCharge,
				"activated_at":            lease.ActivatedAt,
				"terminated_at":           lease.TerminatedAt,
				"expired_at":              lease.ExpiredAt,
				"renewed_at":              lease.RenewedAt,
				"expiry_reminder_sent_at": lease.ExpiryReminderSentAt,
				"termination_reason":      lease.TerminationReason,
				"version":                 lease.Version,
				"updated_at":              lease.UpdatedAt,
			})

		if result.Error != nil {
			lease.Version = loadedVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			lease.Version = loadedVersion
			return shared.ErrConcurrencyConflict
		}

		return savePeriods(tx, lease)
	})
}

// savePeriods reconciles the periods table with the aggregate's current
// schedule: rows dropped by a regeneration are deleted, the rest upserted.
func savePeriods(tx *gorm.DB, lease *leasing.Lease) error {
	currentIDs := make([]uuid.UUID, len(lease.Periods))
	for i, p := range lease.Periods {
		currentIDs[i] = p.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("lease_id = ? AND id NOT IN ?", lease.ID, currentIDs).
			Delete(&leasing.RentPaymentPeriod{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("lease_id = ?", lease.ID).
			Delete(&leasing.RentPaymentPeriod{}).Error; err != nil {
			return err
		}
	}

	for i := range lease.Periods {
		lease.Periods[i].LeaseID = lease.ID
		if err := tx.Save(&lease.Periods[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a draft lease and its periods
func (r *GormLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lease_id = ?", id).
			Delete(&leasing.RentPaymentPeriod{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&leasing.Lease{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormRentPaymentPeriodRepository implements RentPaymentPeriodRepository
// using GORM. It backs the cross-lease sweep queries; aggregate-shaped writes
// go through GormLeaseRepository.
type GormRentPaymentPeriodRepository struct {
	db *gorm.DB
}

// NewGormRentPaymentPeriodRepository creates a new GormRentPaymentPeriodRepository
func NewGormRentPaymentPeriodRepository(db *gorm.DB) *GormRentPaymentPeriodRepository {
	return &GormRentPaymentPeriodRepository{db: db}
}

// FindByLease returns the periods of a lease ordered by sequence
func (r *GormRentPaymentPeriodRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]*leasing.RentPaymentPeriod, error) {
	var periods []*leasing.RentPaymentPeriod
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("sequence ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindDuePending returns pending periods due before the cutoff, across leases
func (r *GormRentPaymentPeriodRepository) FindDuePending(ctx context.Context, cutoff time.Time, limit int) ([]*leasing.RentPaymentPeriod, error) {
	var periods []*leasing.RentPaymentPeriod
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", leasing.PeriodStatusPending, leasing.DateOnly(cutoff)).
		Order("due_date ASC").
		Limit(limit).
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// MarkOverdue flips a period to overdue only while it is still pending. The
// status predicate makes the write conditional; a payment that committed
// after the sweep read its candidates leaves zero rows matching and the sweep
// reports a conflict instead of overwriting the paid state.
func (r *GormRentPaymentPeriodRepository) MarkOverdue(ctx context.Context, periodID uuid.UUID, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&leasing.RentPaymentPeriod{}).
		Where("id = ? AND status = ?", periodID, leasing.PeriodStatusPending).
		Updates(map[string]interface{}{
			"status":     leasing.PeriodStatusOverdue,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure the repositories implement their domain interfaces
var _ leasing.LeaseRepository = (*GormLeaseRepository)(nil)
var _ leasing.RentPaymentPeriodRepository = (*GormRentPaymentPeriodRepository)(nil)

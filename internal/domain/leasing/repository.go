package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeaseRepository defines the persistence operations for lease aggregates
type LeaseRepository interface {
	// FindByID loads a lease together with its rent payment periods
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)

	// FindByProperty returns all leases for a property, newest first
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Lease, error)

	// FindByTenant returns all leases where the given party is the tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Lease, error)

	// FindActiveByProperty returns the active lease for a property, or
	// shared.ErrNotFound when none exists
	FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) (*Lease, error)

	// CountActiveByProperty counts active leases for a property. Used by the
	// activation path to enforce at most one active lease per property.
	CountActiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error)

	// FindExpiredActive returns active leases whose end date is before the
	// given cutoff. Consumed by the expiry sweep.
	FindExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]*Lease, error)

	// FindExpiringSoon returns active leases ending within the window
	// (cutoff, cutoff+window] that have not been reminded yet. Consumed by
	// the renewal reminder sweep.
	FindExpiringSoon(ctx context.Context, cutoff time.Time, window time.Duration, limit int) ([]*Lease, error)

	// Save persists the lease and its periods
	Save(ctx context.Context, lease *Lease) error

	// SaveWithLock persists the lease using optimistic locking and returns
	// shared.ErrConcurrencyConflict when the stored version has moved on
	SaveWithLock(ctx context.Context, lease *Lease) error

	// Delete removes a draft lease
	Delete(ctx context.Context, id uuid.UUID) error
}

// RentPaymentPeriodRepository provides cross-lease queries over rent payment
// periods. Mutations go through the owning lease aggregate; this interface
// exists for the overdue sweep and reporting reads that span many leases.
type RentPaymentPeriodRepository interface {
	// FindByLease returns the periods of a lease ordered by sequence
	FindByLease(ctx context.Context, leaseID uuid.UUID) ([]*RentPaymentPeriod, error)

	// FindDuePending returns pending periods whose due date is before the
	// cutoff, across all leases. Consumed by the overdue sweep.
	FindDuePending(ctx context.Context, cutoff time.Time, limit int) ([]*RentPaymentPeriod, error)

	// MarkOverdue flips a single period to overdue only while it is still
	// pending. Returns shared.ErrConcurrencyConflict when the period moved
	// on, such as a payment committing after the sweep read its candidates.
	MarkOverdue(ctx context.Context, periodID uuid.UUID, now time.Time) error
}

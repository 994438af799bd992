package leasing

import (
	"context"

	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/listing"
)

// TransactionScope provides transactional access to the repositories a lease
// transition touches. Lease activation and termination cascade a property
// status change; both writes must commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the leasing-side repositories
// within one transaction. All repositories returned share the same underlying
// database transaction.
//
// RentPaymentPeriods are child entities of Lease and are persisted through
// LeaseRepo via association handling; PeriodRepo exists for cross-lease sweep
// queries only.
type TransactionalRepositories interface {
	// LeaseRepo returns the lease repository scoped to the current transaction
	LeaseRepo() leasing.LeaseRepository
	// PropertyRepo returns the property repository scoped to the current transaction
	PropertyRepo() listing.PropertyRepository
	// PeriodRepo returns the rent payment period repository scoped to the current transaction
	PeriodRepo() leasing.RentPaymentPeriodRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with in-memory repositories.
type NoOpTransactionScope struct {
	leaseRepo    leasing.LeaseRepository
	propertyRepo listing.PropertyRepository
	periodRepo   leasing.RentPaymentPeriodRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	leaseRepo leasing.LeaseRepository,
	propertyRepo listing.PropertyRepository,
	periodRepo leasing.RentPaymentPeriodRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		periodRepo:   periodRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LeaseRepo returns the lease repository.
func (s *NoOpTransactionScope) LeaseRepo() leasing.LeaseRepository {
	return s.leaseRepo
}

// PropertyRepo returns the property repository.
func (s *NoOpTransactionScope) PropertyRepo() listing.PropertyRepository {
	return s.propertyRepo
}

// PeriodRepo returns the rent payment period repository.
func (s *NoOpTransactionScope) PeriodRepo() leasing.RentPaymentPeriodRepository {
	return s.periodRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

package persistence

import (
	"context"

	appleasing "github.com/estate/backend/internal/application/leasing"
	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/listing"
	"gorm.io/gorm"
)

// GormLeasingTransactionScope implements the leasing TransactionScope using
// GORM transactions. Lease transitions and their property cascades commit or
// roll back together.
type GormLeasingTransactionScope struct {
	db *gorm.DB
}

// NewGormLeasingTransactionScope creates a new GormLeasingTransactionScope
func NewGormLeasingTransactionScope(db *gorm.DB) *GormLeasingTransactionScope {
	return &GormLeasingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLeasingTransactionScope) Execute(ctx context.Context, fn func(repos appleasing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormLeasingRepositories{tx: tx}
		return fn(repos)
	})
}

// gormLeasingRepositories provides access to the leasing-side repositories
// within a transaction
type gormLeasingRepositories struct {
	tx *gorm.DB
}

// LeaseRepo returns the lease repository scoped to the current transaction
func (r *gormLeasingRepositories) LeaseRepo() leasing.LeaseRepository {
	return NewGormLeaseRepository(r.tx)
}

// PropertyRepo returns the property repository scoped to the current transaction
func (r *gormLeasingRepositories) PropertyRepo() listing.PropertyRepository {
	return NewGormPropertyRepository(r.tx)
}

// PeriodRepo returns the rent payment period repository scoped to the current transaction
func (r *gormLeasingRepositories) PeriodRepo() leasing.RentPaymentPeriodRepository {
	return NewGormRentPaymentPeriodRepository(r.tx)
}

// Ensure GormLeasingTransactionScope implements TransactionScope
var _ appleasing.TransactionScope = (*GormLeasingTransactionScope)(nil)

// Ensure gormLeasingRepositories implements TransactionalRepositories
var _ appleasing.TransactionalRepositories = (*gormLeasingRepositories)(nil)

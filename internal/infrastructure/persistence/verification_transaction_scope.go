package persistence

import (
	"context"

	appverification "github.com/estate/backend/internal/application/verification"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/verification"
	"gorm.io/gorm"
)

// GormVerificationTransactionScope implements the verification
// TransactionScope using GORM transactions. Task transitions and the
// property verification status they drive commit atomically.
type GormVerificationTransactionScope struct {
	db *gorm.DB
}

// NewGormVerificationTransactionScope creates a new GormVerificationTransactionScope
func NewGormVerificationTransactionScope(db *gorm.DB) *GormVerificationTransactionScope {
	return &GormVerificationTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormVerificationTransactionScope) Execute(ctx context.Context, fn func(repos appverification.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormVerificationRepositories{tx: tx}
		return fn(repos)
	})
}

// gormVerificationRepositories provides access to the verification-side
// repositories within a transaction
type gormVerificationRepositories struct {
	tx *gorm.DB
}

// TaskRepo returns the task repository scoped to the current transaction
func (r *gormVerificationRepositories) TaskRepo() verification.TaskRepository {
	return NewGormVerificationTaskRepository(r.tx)
}

// PropertyRepo returns the property repository scoped to the current transaction
func (r *gormVerificationRepositories) PropertyRepo() listing.PropertyRepository {
	return NewGormPropertyRepository(r.tx)
}

// Ensure GormVerificationTransactionScope implements TransactionScope
var _ appverification.TransactionScope = (*GormVerificationTransactionScope)(nil)

// Ensure gormVerificationRepositories implements TransactionalRepositories
var _ appverification.TransactionalRepositories = (*gormVerificationRepositories)(nil)

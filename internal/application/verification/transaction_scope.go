package verification

import (
	"context"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/verification"
)

// TransactionScope provides transactional access to the repositories a
// verification outcome touches. Completing or rejecting a task feeds the
// property's verification status in the same commit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the verification-side
// repositories within one transaction.
type TransactionalRepositories interface {
	// TaskRepo returns the task repository scoped to the current transaction
	TaskRepo() verification.TaskRepository
	// PropertyRepo returns the property repository scoped to the current transaction
	PropertyRepo() listing.PropertyRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with in-memory repositories.
type NoOpTransactionScope struct {
	taskRepo     verification.TaskRepository
	propertyRepo listing.PropertyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(taskRepo verification.TaskRepository, propertyRepo listing.PropertyRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{taskRepo: taskRepo, propertyRepo: propertyRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TaskRepo returns the task repository.
func (s *NoOpTransactionScope) TaskRepo() verification.TaskRepository {
	return s.taskRepo
}

// PropertyRepo returns the property repository.
func (s *NoOpTransactionScope) PropertyRepo() listing.PropertyRepository {
	return s.propertyRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

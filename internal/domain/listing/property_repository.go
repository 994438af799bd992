package listing

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines the persistence contract for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error)
	FindByStatus(ctx context.Context, status PropertyStatus) ([]*Property, error)
	// FindActiveListings returns properties in the listing pool, the hot-cache
	// read path
	FindActiveListings(ctx context.Context) ([]*Property, error)
	Save(ctx context.Context, property *Property) error
	// SaveWithLock saves with an optimistic version check and fails with a
	// concurrency conflict if the property changed since it was read
	SaveWithLock(ctx context.Context, property *Property) error
	// Delete archives the property. Lifecycle transitions never destroy one.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

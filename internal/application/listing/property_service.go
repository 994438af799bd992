package listing

import (
	"context"

	"github.com/estate/backend/internal/application/validation"
	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyCache is the read-through cache for property reads. Implementations
// decide the TTL tier; writers only invalidate.
type PropertyCache interface {
	// GetProperty returns a cached property, or false on miss
	GetProperty(ctx context.Context, id uuid.UUID) (*listing.Property, bool)
	// SetProperty caches a property under its entity key
	SetProperty(ctx context.Context, property *listing.Property)
	// GetActiveListings returns the cached active-listings set, or false on miss
	GetActiveListings(ctx context.Context) ([]*listing.Property, bool)
	// SetActiveListings caches the active-listings set
	SetActiveListings(ctx context.Context, properties []*listing.Property)
	// Invalidate drops the entity key and the active-listings set
	Invalidate(ctx context.Context, id uuid.UUID)
}

// PropertyService handles property lifecycle operations. Reads go through
// the cache; every write invalidates the affected keys before returning, so
// a post-write read never sees the stale entry.
type PropertyService struct {
	propertyRepo   listing.PropertyRepository
	cache          PropertyCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(propertyRepo listing.PropertyRepository, logger *zap.Logger) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		logger:       logger,
	}
}

// SetCache sets the read-through cache
func (s *PropertyService) SetCache(cache PropertyCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PropertyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create drafts a new property and queues it for verification. The created
// event is what the verification context reacts to.
func (s *PropertyService) Create(ctx context.Context, actor identity.Actor, req CreatePropertyRequest) (*PropertyResponse, error) {
	if !actor.Has(identity.CapPropertySubmit) {
		return nil, shared.ErrUnauthorized
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	property, err := listing.NewProperty(req.OwnerID, req.Title, req.Address, req.City)
	if err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, property)

	s.logger.Info("property drafted",
		zap.String("property_id", property.ID.String()),
		zap.String("city", property.City),
	)

	response := ToPropertyResponse(property)
	return &response, nil
}

// Activate lists a verified property
func (s *PropertyService) Activate(ctx context.Context, actor identity.Actor, propertyID uuid.UUID) error {
	return s.mutate(ctx, propertyID, func(p *listing.Property) error {
		return p.Activate(actor)
	})
}

// EnterMaintenance takes a listed property off the market for repairs
func (s *PropertyService) EnterMaintenance(ctx context.Context, actor identity.Actor, propertyID uuid.UUID) error {
	return s.mutate(ctx, propertyID, func(p *listing.Property) error {
		return p.EnterMaintenance(actor)
	})
}

// Deactivate unlists a property at the owner's request
func (s *PropertyService) Deactivate(ctx context.Context, actor identity.Actor, propertyID uuid.UUID) error {
	return s.mutate(ctx, propertyID, func(p *listing.Property) error {
		return p.Deactivate(actor)
	})
}

// MarkSold closes the property lifecycle
func (s *PropertyService) MarkSold(ctx context.Context, actor identity.Actor, propertyID uuid.UUID) error {
	return s.mutate(ctx, propertyID, func(p *listing.Property) error {
		return p.MarkSold(actor)
	})
}

// Archive removes a property record. Only allowed with the archive
// capability; rented properties are never archivable.
func (s *PropertyService) Archive(ctx context.Context, actor identity.Actor, propertyID uuid.UUID) error {
	if !actor.Has(identity.CapPropertyArchive) {
		return shared.ErrUnauthorized
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if property.IsRented() {
		return shared.NewDomainError("PROPERTY_RENTED", "Rented properties cannot be archived")
	}

	if err := s.propertyRepo.Delete(ctx, propertyID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, propertyID)
	}

	return nil
}

// GetByID retrieves a property, read-through the cache
func (s *PropertyService) GetByID(ctx context.Context, propertyID uuid.UUID) (*PropertyResponse, error) {
	if s.cache != nil {
		if property, ok := s.cache.GetProperty(ctx, propertyID); ok {
			response := ToPropertyResponse(property)
			return &response, nil
		}
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetProperty(ctx, property)
	}

	response := ToPropertyResponse(property)
	return &response, nil
}

// ListActive retrieves the active listings, read-through the cache
func (s *PropertyService) ListActive(ctx context.Context) ([]PropertyResponse, error) {
	var properties []*listing.Property

	if s.cache != nil {
		if cached, ok := s.cache.GetActiveListings(ctx); ok {
			properties = cached
		}
	}
	if properties == nil {
		var err error
		properties, err = s.propertyRepo.FindActiveListings(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetActiveListings(ctx, properties)
		}
	}

	responses := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		responses = append(responses, ToPropertyResponse(p))
	}
	return responses, nil
}

// ListByOwner retrieves an owner's properties, uncached
func (s *PropertyService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]PropertyResponse, error) {
	properties, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	responses := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		responses = append(responses, ToPropertyResponse(p))
	}
	return responses, nil
}

// mutate loads a property, applies fn, saves with optimistic locking and
// invalidates the cache before returning
func (s *PropertyService) mutate(ctx context.Context, propertyID uuid.UUID, fn func(*listing.Property) error) error {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}

	if err := fn(property); err != nil {
		return err
	}

	if err := s.propertyRepo.SaveWithLock(ctx, property); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, propertyID)
	}

	s.publishEvents(ctx, property)

	return nil
}

func (s *PropertyService) publishEvents(ctx context.Context, property *listing.Property) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range property.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	property.ClearDomainEvents()
}

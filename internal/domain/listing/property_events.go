package listing

import (
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProperty = "Property"

// Event type constants
const (
	EventTypePropertyCreated               = "PropertyCreated"
	EventTypePropertyActivated             = "PropertyActivated"
	EventTypePropertyRented                = "PropertyRented"
	EventTypePropertyReleased              = "PropertyReleased"
	EventTypePropertyDeactivated           = "PropertyDeactivated"
	EventTypePropertySold                  = "PropertySold"
	EventTypePropertyVerificationCompleted = "PropertyVerificationCompleted"
)

// PropertyCreatedEvent is raised when a new draft property is created
type PropertyCreatedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Title      string    `json:"title"`
}

// NewPropertyCreatedEvent creates a new PropertyCreatedEvent
func NewPropertyCreatedEvent(p *Property) *PropertyCreatedEvent {
	return &PropertyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyCreated, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
		Title:           p.Title,
	}
}

// EventType returns the event type name
func (e *PropertyCreatedEvent) EventType() string {
	return EventTypePropertyCreated
}

// PropertyActivatedEvent is raised when a property enters the listing pool
type PropertyActivatedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Title      string    `json:"title"`
	City       string    `json:"city"`
}

// NewPropertyActivatedEvent creates a new PropertyActivatedEvent
func NewPropertyActivatedEvent(p *Property) *PropertyActivatedEvent {
	return &PropertyActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyActivated, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
		Title:           p.Title,
		City:            p.City,
	}
}

// EventType returns the event type name
func (e *PropertyActivatedEvent) EventType() string {
	return EventTypePropertyActivated
}

// PropertyRentedEvent is raised by the lease-activation cascade
type PropertyRentedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	LeaseID    uuid.UUID `json:"lease_id"`
}

// NewPropertyRentedEvent creates a new PropertyRentedEvent
func NewPropertyRentedEvent(p *Property, leaseID uuid.UUID) *PropertyRentedEvent {
	return &PropertyRentedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyRented, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
		LeaseID:         leaseID,
	}
}

// EventType returns the event type name
func (e *PropertyRentedEvent) EventType() string {
	return EventTypePropertyRented
}

// PropertyReleasedEvent is raised when the active lease ends and the property
// returns to the listing pool
type PropertyReleasedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	LeaseID    uuid.UUID `json:"lease_id"`
}

// NewPropertyReleasedEvent creates a new PropertyReleasedEvent
func NewPropertyReleasedEvent(p *Property, leaseID uuid.UUID) *PropertyReleasedEvent {
	return &PropertyReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyReleased, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
		LeaseID:         leaseID,
	}
}

// EventType returns the event type name
func (e *PropertyReleasedEvent) EventType() string {
	return EventTypePropertyReleased
}

// PropertyDeactivatedEvent is raised when a property is unlisted
type PropertyDeactivatedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewPropertyDeactivatedEvent creates a new PropertyDeactivatedEvent
func NewPropertyDeactivatedEvent(p *Property) *PropertyDeactivatedEvent {
	return &PropertyDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyDeactivated, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
	}
}

// EventType returns the event type name
func (e *PropertyDeactivatedEvent) EventType() string {
	return EventTypePropertyDeactivated
}

// PropertySoldEvent is raised when a property is sold
type PropertySoldEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewPropertySoldEvent creates a new PropertySoldEvent
func NewPropertySoldEvent(p *Property) *PropertySoldEvent {
	return &PropertySoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertySold, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
	}
}

// EventType returns the event type name
func (e *PropertySoldEvent) EventType() string {
	return EventTypePropertySold
}

// PropertyVerificationCompletedEvent is raised when the verification workflow
// reports its outcome for this property
type PropertyVerificationCompletedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Passed     bool      `json:"passed"`
}

// NewPropertyVerificationCompletedEvent creates a new PropertyVerificationCompletedEvent
func NewPropertyVerificationCompletedEvent(p *Property, passed bool) *PropertyVerificationCompletedEvent {
	return &PropertyVerificationCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyVerificationCompleted, AggregateTypeProperty, p.ID),
		PropertyID:      p.ID,
		OwnerID:         p.OwnerID,
		Passed:          passed,
	}
}

// EventType returns the event type name
func (e *PropertyVerificationCompletedEvent) EventType() string {
	return EventTypePropertyVerificationCompleted
}

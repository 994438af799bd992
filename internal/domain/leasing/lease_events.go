package leasing

import (
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeLease = "Lease"

// Event type constants
const (
	EventTypeLeaseCreated       = "LeaseCreated"
	EventTypeLeaseFullyApproved = "LeaseFullyApproved"
	EventTypeLeaseActivated     = "LeaseActivated"
	EventTypeLeaseTerminated    = "LeaseTerminated"
	EventTypeLeaseExpired       = "LeaseExpired"
	EventTypeLeaseRenewed       = "LeaseRenewed"
	EventTypeLeaseTermsChanged  = "LeaseTermsChanged"
)

// LeaseCreatedEvent is raised when a new draft lease is created
type LeaseCreatedEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID `json:"lease_id"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewLeaseCreatedEvent creates a new LeaseCreatedEvent
func NewLeaseCreatedEvent(l *Lease) *LeaseCreatedEvent {
	return &LeaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseCreated, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		OwnerID:         l.OwnerID,
	}
}

// EventType returns the event type name
func (e *LeaseCreatedEvent) EventType() string {
	return EventTypeLeaseCreated
}

// LeaseFullyApprovedEvent is raised when both owner and tenant have approved
type LeaseFullyApprovedEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID `json:"lease_id"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewLeaseFullyApprovedEvent creates a new LeaseFullyApprovedEvent
func NewLeaseFullyApprovedEvent(l *Lease) *LeaseFullyApprovedEvent {
	return &LeaseFullyApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseFullyApproved, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		OwnerID:         l.OwnerID,
	}
}

// EventType returns the event type name
func (e *LeaseFullyApprovedEvent) EventType() string {
	return EventTypeLeaseFullyApproved
}

// LeaseActivatedEvent is raised when a lease comes into force. It triggers
// rent schedule generation and tenant/owner notifications.
type LeaseActivatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID       `json:"lease_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
}

// NewLeaseActivatedEvent creates a new LeaseActivatedEvent
func NewLeaseActivatedEvent(l *Lease) *LeaseActivatedEvent {
	return &LeaseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseActivated, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		OwnerID:         l.OwnerID,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		MonthlyRent:     l.MonthlyRent,
	}
}

// EventType returns the event type name
func (e *LeaseActivatedEvent) EventType() string {
	return EventTypeLeaseActivated
}

// LeaseTerminatedEvent is raised when a lease is terminated early
type LeaseTerminatedEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID `json:"lease_id"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	WasActive  bool      `json:"was_active"`
	Reason     string    `json:"reason"`
}

// NewLeaseTerminatedEvent creates a new LeaseTerminatedEvent
func NewLeaseTerminatedEvent(l *Lease, wasActive bool) *LeaseTerminatedEvent {
	return &LeaseTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseTerminated, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		OwnerID:         l.OwnerID,
		WasActive:       wasActive,
		Reason:          l.TerminationReason,
	}
}

// EventType returns the event type name
func (e *LeaseTerminatedEvent) EventType() string {
	return EventTypeLeaseTerminated
}

// LeaseExpiredEvent is raised by the sweep when a lease passes its end date
type LeaseExpiredEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID `json:"lease_id"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewLeaseExpiredEvent creates a new LeaseExpiredEvent
func NewLeaseExpiredEvent(l *Lease) *LeaseExpiredEvent {
	return &LeaseExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseExpired, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		OwnerID:         l.OwnerID,
	}
}

// EventType returns the event type name
func (e *LeaseExpiredEvent) EventType() string {
	return EventTypeLeaseExpired
}

// LeaseRenewedEvent is raised when a lease is closed by renewal
type LeaseRenewedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID `json:"lease_id"`
	SuccessorID uuid.UUID `json:"successor_id"`
	PropertyID  uuid.UUID `json:"property_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

// NewLeaseRenewedEvent creates a new LeaseRenewedEvent
func NewLeaseRenewedEvent(l *Lease, successorID uuid.UUID) *LeaseRenewedEvent {
	return &LeaseRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseRenewed, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		SuccessorID:     successorID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		OwnerID:         l.OwnerID,
	}
}

// EventType returns the event type name
func (e *LeaseRenewedEvent) EventType() string {
	return EventTypeLeaseRenewed
}

// LeaseTermsChangedEvent is raised when the end date or monetary terms of an
// active lease change. It triggers schedule regeneration.
type LeaseTermsChangedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID       `json:"lease_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	EndDate     time.Time       `json:"end_date"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	Maintenance decimal.Decimal `json:"maintenance_charge"`
}

// NewLeaseTermsChangedEvent creates a new LeaseTermsChangedEvent
func NewLeaseTermsChangedEvent(l *Lease) *LeaseTermsChangedEvent {
	return &LeaseTermsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseTermsChanged, AggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		EndDate:         l.EndDate,
		MonthlyRent:     l.MonthlyRent,
		Maintenance:     l.MaintenanceCharge,
	}
}

// EventType returns the event type name
func (e *LeaseTermsChangedEvent) EventType() string {
	return EventTypeLeaseTermsChanged
}

package listing

import (
	"errors"
	"time"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/statemachine"
	"github.com/google/uuid"
)

// PropertyStatus represents the lifecycle status of a property
type PropertyStatus string

const (
	PropertyStatusDraft       PropertyStatus = "DRAFT"
	PropertyStatusActive      PropertyStatus = "ACTIVE"
	PropertyStatusRented      PropertyStatus = "RENTED"
	PropertyStatusMaintenance PropertyStatus = "MAINTENANCE"
	PropertyStatusInactive    PropertyStatus = "INACTIVE"
	PropertyStatusSold        PropertyStatus = "SOLD"
)

// IsValid checks if the status is a valid PropertyStatus
func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusActive, PropertyStatusRented,
		PropertyStatusMaintenance, PropertyStatusInactive, PropertyStatusSold:
		return true
	}
	return false
}

// String returns the string representation of PropertyStatus
func (s PropertyStatus) String() string {
	return string(s)
}

func (s PropertyStatus) state() statemachine.State {
	return statemachine.State(s)
}

// VerificationStatus represents the verification state of a property
type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "PENDING"
	VerificationInProgress VerificationStatus = "IN_PROGRESS"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationRejected   VerificationStatus = "REJECTED"
)

// IsValid checks if the status is a valid VerificationStatus
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationInProgress, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

func (s VerificationStatus) state() statemachine.State {
	return statemachine.State(s)
}

// guardVerified requires the property to have passed verification before it
// can be listed.
func guardVerified(p *Property, _ identity.Actor) error {
	if p.VerificationStatus != VerificationVerified {
		return errors.New("property has not passed verification")
	}
	return nil
}

// propertyMachine is the adjacency table for property lifecycle transitions.
// RENTED is entered and left only by lease cascades; SOLD is terminal.
var propertyMachine = statemachine.New[*Property]("Property",
	statemachine.Rule[*Property]{
		From: PropertyStatusDraft.state(), To: PropertyStatusActive.state(),
		Capability: identity.CapPropertyActivate,
		Guards:     []statemachine.Guard[*Property]{{Rule: "property_verified", Check: guardVerified}},
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusDraft.state(), To: PropertyStatusInactive.state(),
		Capability: identity.CapPropertyDeactivate,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusActive.state(), To: PropertyStatusRented.state(),
		Capability: identity.CapLeaseActivate,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusActive.state(), To: PropertyStatusMaintenance.state(),
		Capability: identity.CapPropertyMaintain,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusActive.state(), To: PropertyStatusInactive.state(),
		Capability: identity.CapPropertyDeactivate,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusActive.state(), To: PropertyStatusSold.state(),
		Capability: identity.CapPropertySell,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusRented.state(), To: PropertyStatusActive.state(),
		Capability: identity.CapLeaseTerminate,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusMaintenance.state(), To: PropertyStatusActive.state(),
		Capability: identity.CapPropertyActivate,
		Guards:     []statemachine.Guard[*Property]{{Rule: "property_verified", Check: guardVerified}},
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusMaintenance.state(), To: PropertyStatusInactive.state(),
		Capability: identity.CapPropertyDeactivate,
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusInactive.state(), To: PropertyStatusActive.state(),
		Capability: identity.CapPropertyActivate,
		Guards:     []statemachine.Guard[*Property]{{Rule: "property_verified", Check: guardVerified}},
	},
	statemachine.Rule[*Property]{
		From: PropertyStatusInactive.state(), To: PropertyStatusSold.state(),
		Capability: identity.CapPropertySell,
	},
)

// verificationMachine tracks the property-level verification status, which is
// driven by the verification workflow, never by direct actor requests.
var verificationMachine = statemachine.New[*Property]("PropertyVerification",
	statemachine.Rule[*Property]{From: VerificationPending.state(), To: VerificationInProgress.state()},
	statemachine.Rule[*Property]{From: VerificationInProgress.state(), To: VerificationVerified.state()},
	statemachine.Rule[*Property]{From: VerificationInProgress.state(), To: VerificationRejected.state()},
	statemachine.Rule[*Property]{From: VerificationRejected.state(), To: VerificationPending.state()},
)

// PropertyMachine exposes the property adjacency table for introspection
func PropertyMachine() *statemachine.Machine[*Property] {
	return propertyMachine
}

// Property is the aggregate root for a listed property.
// Status and availability are mutated only through validated transitions:
// RENTED implies Available == false, and availability never becomes true
// while a lease on this property is active.
type Property struct {
	shared.BaseAggregateRoot
	OwnerID            uuid.UUID
	Title              string
	Address            string
	City               string
	Status             PropertyStatus
	Available          bool
	VerificationStatus VerificationStatus
	ListedAt           *time.Time
	RentedAt           *time.Time
	SoldAt             *time.Time
}

// NewProperty creates a new draft property owned by ownerID
func NewProperty(ownerID uuid.UUID, title, address, city string) (*Property, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Property title cannot be empty")
	}
	if address == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Property address cannot be empty")
	}

	p := &Property{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		OwnerID:            ownerID,
		Title:              title,
		Address:            address,
		City:               city,
		Status:             PropertyStatusDraft,
		Available:          false,
		VerificationStatus: VerificationPending,
	}

	p.AddDomainEvent(NewPropertyCreatedEvent(p))

	return p, nil
}

// Activate lists the property, making it available for leasing.
// Requires passed verification.
func (p *Property) Activate(actor identity.Actor) error {
	if err := propertyMachine.Validate(p, p.ID, p.Status.state(), PropertyStatusActive.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	p.Status = PropertyStatusActive
	p.Available = true
	if p.ListedAt == nil {
		p.ListedAt = &now
	}
	p.UpdatedAt = now

	p.AddDomainEvent(NewPropertyActivatedEvent(p))

	return nil
}

// MarkRented is the cascade applied when a lease on this property activates.
// It clears availability in the same commit as the lease transition.
func (p *Property) MarkRented(actor identity.Actor, leaseID uuid.UUID) error {
	if err := propertyMachine.Validate(p, p.ID, p.Status.state(), PropertyStatusRented.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	p.Status = PropertyStatusRented
	p.Available = false
	p.RentedAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPropertyRentedEvent(p, leaseID))

	return nil
}

// Release is the cascade applied when the active lease on this property
// terminates or expires. The property returns to the listing pool.
func (p *Property) Release(actor identity.Actor, leaseID uuid.UUID) error {
	if err := propertyMachine.Validate(p, p.ID, p.Status.state(), PropertyStatusActive.state(), actor); err != nil {
		return err
	}

	p.Status = PropertyStatusActive
	p.Available = true
	p.RentedAt = nil
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPropertyReleasedEvent(p, leaseID))

	return nil
}

// EnterMaintenance takes the property off the market for maintenance
func (p *Property) EnterMaintenance(actor identity.Actor) error {
	if err := propertyMachine.Validate(p, p.ID, p.Status.state(), PropertyStatusMaintenance.state(), actor); err != nil {
		return err
	}

	p.Status = PropertyStatusMaintenance
	p.Available = false
	p.UpdatedAt = time.Now()

	return nil
}

// Deactivate unlists the property
func (p *Property) Deactivate(actor identity.Actor) error {
	if err := propertyMachine.Validate(p, p.ID, p.Status.state(), PropertyStatusInactive.state(), actor); err != nil {
		return err
	}

	p.Status = PropertyStatusInactive
	p.Available = false
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPropertyDeactivatedEvent(p))

	return nil
}

// MarkSold records the sale of the property. Terminal.
func (p *Property) MarkSold(actor identity.Actor) error {
	if err := propertyMachine.Validate(p, p.ID, p.Status.state(), PropertyStatusSold.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	p.Status = PropertyStatusSold
	p.Available = false
	p.SoldAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPropertySoldEvent(p))

	return nil
}

// StartVerification marks the property's verification as underway. Driven by
// the verification workflow when a task is assigned.
func (p *Property) StartVerification() error {
	if err := verificationMachine.Validate(p, p.ID, p.VerificationStatus.state(), VerificationInProgress.state(), identity.SystemActor()); err != nil {
		return err
	}

	p.VerificationStatus = VerificationInProgress
	p.UpdatedAt = time.Now()

	return nil
}

// CompleteVerification applies the verification outcome reported by the
// workflow coordinator.
func (p *Property) CompleteVerification(passed bool) error {
	target := VerificationVerified
	if !passed {
		target = VerificationRejected
	}

	if err := verificationMachine.Validate(p, p.ID, p.VerificationStatus.state(), target.state(), identity.SystemActor()); err != nil {
		return err
	}

	p.VerificationStatus = target
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPropertyVerificationCompletedEvent(p, passed))

	return nil
}

// ResetVerification returns a rejected property to the verification queue
func (p *Property) ResetVerification() error {
	if err := verificationMachine.Validate(p, p.ID, p.VerificationStatus.state(), VerificationPending.state(), identity.SystemActor()); err != nil {
		return err
	}

	p.VerificationStatus = VerificationPending
	p.UpdatedAt = time.Now()

	return nil
}

// IsRented returns true if the property currently hosts an active lease
func (p *Property) IsRented() bool {
	return p.Status == PropertyStatusRented
}

// IsListed returns true if the property is visible in the listing pool
func (p *Property) IsListed() bool {
	return p.Status == PropertyStatusActive
}

// IsTerminal returns true if no further lifecycle transitions are possible
func (p *Property) IsTerminal() bool {
	return propertyMachine.IsTerminal(p.Status.state())
}

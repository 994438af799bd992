package identity

import (
	"context"

	"github.com/google/uuid"
)

// Role classifies platform actors
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleTenant   Role = "TENANT"
	RoleAgent    Role = "AGENT"
	RoleVerifier Role = "VERIFIER"
	RoleAdmin    Role = "ADMIN"
	RoleSystem   Role = "SYSTEM"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleTenant, RoleAgent, RoleVerifier, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Capability is a single permission required by a state transition
type Capability string

const (
	CapPropertySubmit     Capability = "property.submit"
	CapPropertyActivate   Capability = "property.activate"
	CapPropertyMaintain   Capability = "property.maintain"
	CapPropertyDeactivate Capability = "property.deactivate"
	CapPropertySell       Capability = "property.sell"
	CapPropertyArchive    Capability = "property.archive"

	CapLeaseSubmit        Capability = "lease.submit"
	CapLeaseApproveOwner  Capability = "lease.approve_owner"
	CapLeaseApproveTenant Capability = "lease.approve_tenant"
	CapLeaseReject        Capability = "lease.reject"
	CapLeaseActivate      Capability = "lease.activate"
	CapLeaseTerminate     Capability = "lease.terminate"
	CapLeaseRenew         Capability = "lease.renew"

	CapPaymentRecord Capability = "payment.record"
	CapPeriodWaive   Capability = "period.waive"

	CapVerificationAssign   Capability = "verification.assign"
	CapVerificationStart    Capability = "verification.start"
	CapVerificationComplete Capability = "verification.complete"
	CapVerificationReject   Capability = "verification.reject"
)

// roleCapabilities maps each role to the capabilities it holds by default
var roleCapabilities = map[Role][]Capability{
	RoleOwner: {
		CapPropertySubmit, CapPropertyActivate, CapPropertyMaintain,
		CapPropertyDeactivate, CapPropertySell,
		CapLeaseSubmit, CapLeaseApproveOwner, CapLeaseReject,
		CapLeaseTerminate, CapLeaseRenew,
	},
	RoleTenant: {
		CapLeaseApproveTenant, CapLeaseTerminate, CapPaymentRecord,
	},
	RoleAgent: {
		CapPropertySubmit, CapLeaseSubmit, CapLeaseRenew,
	},
	RoleVerifier: {
		CapVerificationStart, CapVerificationComplete, CapVerificationReject,
	},
	RoleAdmin: {
		CapPropertySubmit, CapPropertyActivate, CapPropertyMaintain,
		CapPropertyDeactivate, CapPropertySell, CapPropertyArchive,
		CapLeaseSubmit, CapLeaseReject, CapLeaseActivate,
		CapLeaseTerminate, CapLeaseRenew,
		CapPaymentRecord, CapPeriodWaive,
		CapVerificationAssign, CapVerificationReject,
	},
}

// Actor is a resolved platform actor with its capability set
type Actor struct {
	ID           uuid.UUID
	Role         Role
	capabilities map[Capability]struct{}
}

// NewActor creates an actor with the default capabilities of its role
func NewActor(id uuid.UUID, role Role) Actor {
	return NewActorWithCapabilities(id, role, roleCapabilities[role]...)
}

// NewActorWithCapabilities creates an actor with an explicit capability set
func NewActorWithCapabilities(id uuid.UUID, role Role, caps ...Capability) Actor {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return Actor{ID: id, Role: role, capabilities: set}
}

// SystemActor returns the internal actor used for cascaded transitions and
// scheduled sweeps. It holds every capability.
func SystemActor() Actor {
	caps := make([]Capability, 0)
	seen := make(map[Capability]struct{})
	for _, roleCaps := range roleCapabilities {
		for _, c := range roleCaps {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				caps = append(caps, c)
			}
		}
	}
	return NewActorWithCapabilities(uuid.Nil, RoleSystem, caps...)
}

// Has reports whether the actor holds the given capability
func (a Actor) Has(c Capability) bool {
	if a.Role == RoleSystem {
		return true
	}
	_, ok := a.capabilities[c]
	return ok
}

// Capabilities returns the actor's capability set
func (a Actor) Capabilities() []Capability {
	caps := make([]Capability, 0, len(a.capabilities))
	for c := range a.capabilities {
		caps = append(caps, c)
	}
	return caps
}

// ActorProvider resolves actor identifiers to actors with their capability
// sets. Identity management itself lives outside the engine.
type ActorProvider interface {
	Resolve(ctx context.Context, id uuid.UUID) (Actor, error)
}

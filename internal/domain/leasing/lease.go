package leasing

import (
	"errors"
	"fmt"
	"time"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/statemachine"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxDepositMonths caps the deposit at this many months of rent
const MaxDepositMonths = 12

// LeaseStatus represents the lifecycle status of a lease
type LeaseStatus string

const (
	LeaseStatusDraft           LeaseStatus = "DRAFT"
	LeaseStatusPendingApproval LeaseStatus = "PENDING_APPROVAL"
	LeaseStatusActive          LeaseStatus = "ACTIVE"
	LeaseStatusExpired         LeaseStatus = "EXPIRED"
	LeaseStatusTerminated      LeaseStatus = "TERMINATED"
	LeaseStatusRenewed         LeaseStatus = "RENEWED"
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusPendingApproval, LeaseStatusActive,
		LeaseStatusExpired, LeaseStatusTerminated, LeaseStatusRenewed:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

func (s LeaseStatus) state() statemachine.State {
	return statemachine.State(s)
}

// ApprovalStatus tracks the joint owner/tenant approval of a lease
type ApprovalStatus string

const (
	ApprovalPending       ApprovalStatus = "PENDING"
	ApprovalOwnerApproved ApprovalStatus = "OWNER_APPROVED"
	ApprovalTenantAgreed  ApprovalStatus = "TENANT_APPROVED"
	ApprovalComplete      ApprovalStatus = "FULLY_APPROVED"
	ApprovalRejected      ApprovalStatus = "REJECTED"
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalOwnerApproved, ApprovalTenantAgreed,
		ApprovalComplete, ApprovalRejected:
		return true
	}
	return false
}

func (s ApprovalStatus) state() statemachine.State {
	return statemachine.State(s)
}

func guardApprovalComplete(l *Lease, _ identity.Actor) error {
	if l.ApprovalStatus != ApprovalComplete {
		return fmt.Errorf("lease approval is %s, not %s", l.ApprovalStatus, ApprovalComplete)
	}
	return nil
}

func guardEndDateReached(l *Lease, _ identity.Actor) error {
	if l.expireAsOf.Before(l.EndDate) {
		return errors.New("lease end date has not passed")
	}
	return nil
}

func guardAwaitingApproval(l *Lease, _ identity.Actor) error {
	if l.Status != LeaseStatusPendingApproval {
		return fmt.Errorf("lease is %s, approvals apply only while pending approval", l.Status)
	}
	return nil
}

// leaseMachine is the adjacency table for lease lifecycle transitions.
// EXPIRED, TERMINATED and RENEWED are terminal; renewal spawns a successor
// lease instead of mutating this one further.
var leaseMachine = statemachine.New[*Lease]("Lease",
	statemachine.Rule[*Lease]{
		From: LeaseStatusDraft.state(), To: LeaseStatusPendingApproval.state(),
		Capability: identity.CapLeaseSubmit,
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusPendingApproval.state(), To: LeaseStatusDraft.state(),
		Capability: identity.CapLeaseReject,
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusPendingApproval.state(), To: LeaseStatusActive.state(),
		Capability: identity.CapLeaseActivate,
		Guards:     []statemachine.Guard[*Lease]{{Rule: "approval_complete", Check: guardApprovalComplete}},
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusDraft.state(), To: LeaseStatusTerminated.state(),
		Capability: identity.CapLeaseTerminate,
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusPendingApproval.state(), To: LeaseStatusTerminated.state(),
		Capability: identity.CapLeaseTerminate,
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusActive.state(), To: LeaseStatusTerminated.state(),
		Capability: identity.CapLeaseTerminate,
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusActive.state(), To: LeaseStatusExpired.state(),
		Guards: []statemachine.Guard[*Lease]{{Rule: "end_date_reached", Check: guardEndDateReached}},
	},
	statemachine.Rule[*Lease]{
		From: LeaseStatusActive.state(), To: LeaseStatusRenewed.state(),
		Capability: identity.CapLeaseRenew,
	},
)

// approvalMachine validates the joint approval workflow. Owner and tenant
// approvals commute; either party's approval after the other completes it.
var approvalMachine = statemachine.New[*Lease]("LeaseApproval",
	statemachine.Rule[*Lease]{
		From: ApprovalPending.state(), To: ApprovalOwnerApproved.state(),
		Capability: identity.CapLeaseApproveOwner,
		Guards:     []statemachine.Guard[*Lease]{{Rule: "awaiting_approval", Check: guardAwaitingApproval}},
	},
	statemachine.Rule[*Lease]{
		From: ApprovalPending.state(), To: ApprovalTenantAgreed.state(),
		Capability: identity.CapLeaseApproveTenant,
		Guards:     []statemachine.Guard[*Lease]{{Rule: "awaiting_approval", Check: guardAwaitingApproval}},
	},
	statemachine.Rule[*Lease]{
		From: ApprovalOwnerApproved.state(), To: ApprovalComplete.state(),
		Capability: identity.CapLeaseApproveTenant,
		Guards:     []statemachine.Guard[*Lease]{{Rule: "awaiting_approval", Check: guardAwaitingApproval}},
	},
	statemachine.Rule[*Lease]{
		From: ApprovalTenantAgreed.state(), To: ApprovalComplete.state(),
		Capability: identity.CapLeaseApproveOwner,
		Guards:     []statemachine.Guard[*Lease]{{Rule: "awaiting_approval", Check: guardAwaitingApproval}},
	},
	statemachine.Rule[*Lease]{
		From: ApprovalPending.state(), To: ApprovalRejected.state(),
		Capability: identity.CapLeaseReject,
	},
	statemachine.Rule[*Lease]{
		From: ApprovalOwnerApproved.state(), To: ApprovalRejected.state(),
		Capability: identity.CapLeaseReject,
	},
	statemachine.Rule[*Lease]{
		From: ApprovalTenantAgreed.state(), To: ApprovalRejected.state(),
		Capability: identity.CapLeaseReject,
	},
)

// LeaseMachine exposes the lease adjacency table for introspection
func LeaseMachine() *statemachine.Machine[*Lease] {
	return leaseMachine
}

// Lease is the aggregate root for a rental contract between one property,
// one tenant and one owner, optionally brokered by an agent. It owns its
// rent payment periods.
type Lease struct {
	shared.BaseAggregateRoot
	PropertyID           uuid.UUID
	TenantID             uuid.UUID
	OwnerID              uuid.UUID
	AgentID              *uuid.UUID
	PredecessorID        *uuid.UUID // set when this lease was spawned by a renewal
	Status               LeaseStatus
	ApprovalStatus       ApprovalStatus
	StartDate            time.Time
	EndDate              time.Time
	MonthlyRent          decimal.Decimal
	Deposit              decimal.Decimal
	MaintenanceCharge    decimal.Decimal
	Periods              []RentPaymentPeriod `gorm:"foreignKey:LeaseID"`
	ActivatedAt          *time.Time
	TerminatedAt         *time.Time
	ExpiredAt            *time.Time
	RenewedAt            *time.Time
	ExpiryReminderSentAt *time.Time
	TerminationReason    string

	// clock reference for the end-date guard, set only for the duration of
	// an Expire call
	expireAsOf time.Time
}

// LeaseTerms bundles the inputs for creating a lease
type LeaseTerms struct {
	PropertyID        uuid.UUID
	TenantID          uuid.UUID
	OwnerID           uuid.UUID
	AgentID           *uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	MonthlyRent       decimal.Decimal
	Deposit           decimal.Decimal
	MaintenanceCharge decimal.Decimal
}

// DateOnly truncates a timestamp to a calendar date in UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validateTerms(terms LeaseTerms) error {
	if terms.PropertyID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if terms.TenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if terms.OwnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if !DateOnly(terms.EndDate).After(DateOnly(terms.StartDate)) {
		return shared.NewDomainError("INVALID_DATES", "Lease end date must be strictly after start date")
	}
	if terms.MonthlyRent.IsNegative() || terms.Deposit.IsNegative() || terms.MaintenanceCharge.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Monetary terms cannot be negative")
	}
	if terms.Deposit.GreaterThan(terms.MonthlyRent.Mul(decimal.NewFromInt(MaxDepositMonths))) {
		return shared.NewDomainError("DEPOSIT_CAP_EXCEEDED",
			fmt.Sprintf("Deposit cannot exceed %d months of rent", MaxDepositMonths))
	}
	return nil
}

// NewLease creates a new draft lease. Date ordering, non-negative amounts and
// the deposit cap are rejected here, before the lease ever reaches the
// approval workflow.
func NewLease(terms LeaseTerms) (*Lease, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	lease := &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        terms.PropertyID,
		TenantID:          terms.TenantID,
		OwnerID:           terms.OwnerID,
		AgentID:           terms.AgentID,
		Status:            LeaseStatusDraft,
		ApprovalStatus:    ApprovalPending,
		StartDate:         DateOnly(terms.StartDate),
		EndDate:           DateOnly(terms.EndDate),
		MonthlyRent:       terms.MonthlyRent,
		Deposit:           terms.Deposit,
		MaintenanceCharge: terms.MaintenanceCharge,
		Periods:           make([]RentPaymentPeriod, 0),
	}

	lease.AddDomainEvent(NewLeaseCreatedEvent(lease))

	return lease, nil
}

// SubmitForApproval moves the draft into the joint approval workflow
func (l *Lease) SubmitForApproval(actor identity.Actor) error {
	if err := leaseMachine.Validate(l, l.ID, l.Status.state(), LeaseStatusPendingApproval.state(), actor); err != nil {
		return err
	}

	l.Status = LeaseStatusPendingApproval
	l.ApprovalStatus = ApprovalPending
	l.UpdatedAt = time.Now()

	return nil
}

// ApproveByOwner records the owner's approval
func (l *Lease) ApproveByOwner(actor identity.Actor) error {
	target := ApprovalOwnerApproved
	if l.ApprovalStatus == ApprovalTenantAgreed {
		target = ApprovalComplete
	}
	return l.applyApproval(actor, target)
}

// ApproveByTenant records the tenant's approval
func (l *Lease) ApproveByTenant(actor identity.Actor) error {
	target := ApprovalTenantAgreed
	if l.ApprovalStatus == ApprovalOwnerApproved {
		target = ApprovalComplete
	}
	return l.applyApproval(actor, target)
}

// RejectApproval rejects the lease during approval
func (l *Lease) RejectApproval(actor identity.Actor) error {
	return l.applyApproval(actor, ApprovalRejected)
}

func (l *Lease) applyApproval(actor identity.Actor, target ApprovalStatus) error {
	if err := approvalMachine.Validate(l, l.ID, l.ApprovalStatus.state(), target.state(), actor); err != nil {
		return err
	}

	l.ApprovalStatus = target
	l.UpdatedAt = time.Now()

	if target == ApprovalComplete {
		l.AddDomainEvent(NewLeaseFullyApprovedEvent(l))
	}

	return nil
}

// Activate brings a fully approved lease into force. The caller must enforce
// the one-active-lease-per-property invariant and cascade the property to
// rented within the same commit; this method only validates and applies the
// lease-local transition.
func (l *Lease) Activate(actor identity.Actor) error {
	if err := leaseMachine.Validate(l, l.ID, l.Status.state(), LeaseStatusActive.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	l.Status = LeaseStatusActive
	l.ActivatedAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeaseActivatedEvent(l))

	return nil
}

// Terminate ends the lease before its end date
func (l *Lease) Terminate(actor identity.Actor, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Termination reason is required")
	}
	wasActive := l.Status == LeaseStatusActive
	if err := leaseMachine.Validate(l, l.ID, l.Status.state(), LeaseStatusTerminated.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	l.Status = LeaseStatusTerminated
	l.TerminatedAt = &now
	l.TerminationReason = reason
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeaseTerminatedEvent(l, wasActive))

	return nil
}

// Expire marks a lease whose end date has passed as of the given instant.
// Driven by the periodic sweep, never by actor request; the sweep supplies
// its own reference time so the guard stays deterministic.
func (l *Lease) Expire(now time.Time) error {
	l.expireAsOf = now
	err := leaseMachine.Validate(l, l.ID, l.Status.state(), LeaseStatusExpired.state(), identity.SystemActor())
	l.expireAsOf = time.Time{}
	if err != nil {
		return err
	}

	l.Status = LeaseStatusExpired
	l.ExpiredAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeaseExpiredEvent(l))

	return nil
}

// MarkExpiryReminderSent records that the expiring-soon reminder for this
// lease was handed to the notification channel. Sweeps skip leases that
// already carry the marker.
func (l *Lease) MarkExpiryReminderSent(now time.Time) {
	l.ExpiryReminderSentAt = &now
	l.UpdatedAt = now
}

// Renew closes this lease as renewed and spawns a draft successor starting
// the day after this lease ends. The successor goes through the approval
// workflow like any other lease; this lease is never mutated past RENEWED.
func (l *Lease) Renew(actor identity.Actor, newEndDate time.Time, newRent decimal.Decimal) (*Lease, error) {
	if err := leaseMachine.Validate(l, l.ID, l.Status.state(), LeaseStatusRenewed.state(), actor); err != nil {
		return nil, err
	}

	successorStart := l.EndDate.AddDate(0, 0, 1)
	successor, err := NewLease(LeaseTerms{
		PropertyID:        l.PropertyID,
		TenantID:          l.TenantID,
		OwnerID:           l.OwnerID,
		AgentID:           l.AgentID,
		StartDate:         successorStart,
		EndDate:           newEndDate,
		MonthlyRent:       newRent,
		Deposit:           l.Deposit,
		MaintenanceCharge: l.MaintenanceCharge,
	})
	if err != nil {
		return nil, err
	}
	successor.PredecessorID = &l.ID

	now := time.Now()
	l.Status = LeaseStatusRenewed
	l.RenewedAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeaseRenewedEvent(l, successor.ID))

	return successor, nil
}

// UpdateTerms changes the end date and monetary terms of an active lease.
// The unsettled part of the payment schedule must be regenerated afterwards;
// the raised event carries what changed.
func (l *Lease) UpdateTerms(actor identity.Actor, newEndDate time.Time, newRent, newMaintenance decimal.Decimal) error {
	if !actor.Has(identity.CapLeaseRenew) && actor.Role != identity.RoleSystem {
		return shared.ErrUnauthorized
	}
	if l.Status != LeaseStatusActive {
		return shared.ErrInvalidState
	}

	updated := LeaseTerms{
		PropertyID:        l.PropertyID,
		TenantID:          l.TenantID,
		OwnerID:           l.OwnerID,
		StartDate:         l.StartDate,
		EndDate:           newEndDate,
		MonthlyRent:       newRent,
		Deposit:           l.Deposit,
		MaintenanceCharge: newMaintenance,
	}
	if err := validateTerms(updated); err != nil {
		return err
	}

	l.EndDate = DateOnly(newEndDate)
	l.MonthlyRent = newRent
	l.MaintenanceCharge = newMaintenance
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(NewLeaseTermsChangedEvent(l))

	return nil
}

// MonthlyCharge is the amount due per period: rent plus maintenance
func (l *Lease) MonthlyCharge() decimal.Decimal {
	return l.MonthlyRent.Add(l.MaintenanceCharge)
}

// IsActive returns true if the lease is currently in force
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// IsTerminal returns true if the lease reached a terminal status
func (l *Lease) IsTerminal() bool {
	return leaseMachine.IsTerminal(l.Status.state())
}

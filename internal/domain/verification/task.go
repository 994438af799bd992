package verification

import (
	"fmt"
	"time"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/statemachine"
	"github.com/google/uuid"
)

// Quality score bounds for a completed verification
const (
	MinQualityScore = 1
	MaxQualityScore = 10
)

// TaskStatus represents the lifecycle status of a verification task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusRejected   TaskStatus = "REJECTED"
)

// IsValid checks if the status is a valid TaskStatus
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusAssigned, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

func (s TaskStatus) state() statemachine.State {
	return statemachine.State(s)
}

// guardAssignedVerifier restricts inspection work to the verifier the task
// was assigned to. System actors pass for escalations.
func guardAssignedVerifier(t *VerificationTask, actor identity.Actor) error {
	if actor.Role == identity.RoleSystem {
		return nil
	}
	if t.VerifierID == nil {
		return fmt.Errorf("task has no assigned verifier")
	}
	if actor.ID != *t.VerifierID {
		return fmt.Errorf("actor %s is not the assigned verifier", actor.ID)
	}
	return nil
}

// taskMachine is the adjacency table for verification task transitions.
// An assigned task can be returned to the pool, but work in progress cannot
// be silently dropped; it must be completed or rejected.
var taskMachine = statemachine.New[*VerificationTask]("VerificationTask",
	statemachine.Rule[*VerificationTask]{
		From: TaskStatusPending.state(), To: TaskStatusAssigned.state(),
		Capability: identity.CapVerificationAssign,
	},
	statemachine.Rule[*VerificationTask]{
		From: TaskStatusAssigned.state(), To: TaskStatusPending.state(),
		Capability: identity.CapVerificationAssign,
	},
	statemachine.Rule[*VerificationTask]{
		From: TaskStatusAssigned.state(), To: TaskStatusInProgress.state(),
		Capability: identity.CapVerificationStart,
		Guards:     []statemachine.Guard[*VerificationTask]{{Rule: "assigned_verifier", Check: guardAssignedVerifier}},
	},
	statemachine.Rule[*VerificationTask]{
		From: TaskStatusInProgress.state(), To: TaskStatusCompleted.state(),
		Capability: identity.CapVerificationComplete,
		Guards:     []statemachine.Guard[*VerificationTask]{{Rule: "assigned_verifier", Check: guardAssignedVerifier}},
	},
	statemachine.Rule[*VerificationTask]{
		From: TaskStatusInProgress.state(), To: TaskStatusRejected.state(),
		Capability: identity.CapVerificationReject,
	},
	statemachine.Rule[*VerificationTask]{
		From: TaskStatusAssigned.state(), To: TaskStatusRejected.state(),
		Capability: identity.CapVerificationReject,
	},
)

// TaskMachine exposes the verification adjacency table for introspection
func TaskMachine() *statemachine.Machine[*VerificationTask] {
	return taskMachine
}

// Finding is one structured check result recorded during an inspection
type Finding struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID  uuid.UUID `gorm:"type:uuid;index"`
	Check   string
	Passed  bool
	Legal   bool // true when a failed check is a legal issue
	Remarks string
}

// VerificationTask is the aggregate root for one inspection of a property.
// It is created when the property is submitted for listing and is terminal
// at completed or rejected.
type VerificationTask struct {
	shared.BaseAggregateRoot
	PropertyID      uuid.UUID
	VerifierID      *uuid.UUID
	Status          TaskStatus
	QualityScore    *int
	Findings        []Finding `gorm:"foreignKey:TaskID"`
	AssignedAt      *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	RejectionReason string
}

// NewVerificationTask creates a pending task for a property
func NewVerificationTask(propertyID uuid.UUID) (*VerificationTask, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}

	task := &VerificationTask{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        propertyID,
		Status:            TaskStatusPending,
		Findings:          make([]Finding, 0),
	}

	task.AddDomainEvent(NewTaskCreatedEvent(task))

	return task, nil
}

// Assign hands the task to a verifier. The caller must enforce that the
// verifier has no other open task for the same property before committing.
func (t *VerificationTask) Assign(actor identity.Actor, verifierID uuid.UUID) error {
	if verifierID == uuid.Nil {
		return shared.NewDomainError("INVALID_VERIFIER", "Verifier ID cannot be empty")
	}
	if err := taskMachine.Validate(t, t.ID, t.Status.state(), TaskStatusAssigned.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	t.VerifierID = &verifierID
	t.Status = TaskStatusAssigned
	t.AssignedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(NewTaskAssignedEvent(t, verifierID))

	return nil
}

// Unassign returns an assigned task to the pool, for verifier timeout or
// unavailability. In-progress work cannot be unassigned.
func (t *VerificationTask) Unassign(actor identity.Actor) error {
	if err := taskMachine.Validate(t, t.ID, t.Status.state(), TaskStatusPending.state(), actor); err != nil {
		return err
	}

	released := t.VerifierID
	t.VerifierID = nil
	t.Status = TaskStatusPending
	t.AssignedAt = nil
	t.UpdatedAt = time.Now()

	t.AddDomainEvent(NewTaskUnassignedEvent(t, released))

	return nil
}

// Start marks the inspection as underway
func (t *VerificationTask) Start(actor identity.Actor) error {
	if err := taskMachine.Validate(t, t.ID, t.Status.state(), TaskStatusInProgress.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	t.Status = TaskStatusInProgress
	t.StartedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(NewTaskStartedEvent(t))

	return nil
}

// Complete records the inspection outcome. A quality score in [1, 10] is
// required. The overall result is failed when any check failed; the caller
// propagates it to the property's verification status.
func (t *VerificationTask) Complete(actor identity.Actor, score int, findings []Finding) error {
	if score < MinQualityScore || score > MaxQualityScore {
		return shared.NewDomainError("INVALID_SCORE",
			fmt.Sprintf("Quality score must be between %d and %d", MinQualityScore, MaxQualityScore))
	}
	if err := taskMachine.Validate(t, t.ID, t.Status.state(), TaskStatusCompleted.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	t.Status = TaskStatusCompleted
	t.QualityScore = &score
	t.CompletedAt = &now
	t.UpdatedAt = now

	t.Findings = make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.ID == uuid.Nil {
			f.ID = uuid.New()
		}
		f.TaskID = t.ID
		t.Findings = append(t.Findings, f)
	}

	t.AddDomainEvent(NewTaskCompletedEvent(t, t.Passed()))

	return nil
}

// Reject closes the task without a passing outcome
func (t *VerificationTask) Reject(actor identity.Actor, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	if err := taskMachine.Validate(t, t.ID, t.Status.state(), TaskStatusRejected.state(), actor); err != nil {
		return err
	}

	now := time.Now()
	t.Status = TaskStatusRejected
	t.RejectionReason = reason
	t.CompletedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(NewTaskRejectedEvent(t, reason))

	return nil
}

// Passed reports whether a completed task cleared every check
func (t *VerificationTask) Passed() bool {
	if t.Status != TaskStatusCompleted {
		return false
	}
	for _, f := range t.Findings {
		if !f.Passed {
			return false
		}
	}
	return true
}

// HasLegalIssues reports whether any failed check was flagged legal
func (t *VerificationTask) HasLegalIssues() bool {
	for _, f := range t.Findings {
		if !f.Passed && f.Legal {
			return true
		}
	}
	return false
}

// IsOpen returns true while the task still needs verifier attention
func (t *VerificationTask) IsOpen() bool {
	return !t.IsTerminal()
}

// IsTerminal returns true if the task reached a terminal status
func (t *VerificationTask) IsTerminal() bool {
	return taskMachine.IsTerminal(t.Status.state())
}

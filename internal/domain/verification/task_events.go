package verification

import (
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeVerificationTask = "VerificationTask"

// Event type constants
const (
	EventTypeTaskCreated    = "VerificationTaskCreated"
	EventTypeTaskAssigned   = "VerificationTaskAssigned"
	EventTypeTaskUnassigned = "VerificationTaskUnassigned"
	EventTypeTaskStarted    = "VerificationTaskStarted"
	EventTypeTaskCompleted  = "VerificationTaskCompleted"
	EventTypeTaskRejected   = "VerificationTaskRejected"
)

// TaskCreatedEvent is raised when a property enters the verification queue
type TaskCreatedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID `json:"task_id"`
	PropertyID uuid.UUID `json:"property_id"`
}

// NewTaskCreatedEvent creates a new TaskCreatedEvent
func NewTaskCreatedEvent(t *VerificationTask) *TaskCreatedEvent {
	return &TaskCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskCreated, AggregateTypeVerificationTask, t.ID),
		TaskID:          t.ID,
		PropertyID:      t.PropertyID,
	}
}

// EventType returns the event type name
func (e *TaskCreatedEvent) EventType() string {
	return EventTypeTaskCreated
}

// TaskAssignedEvent is raised when a verifier picks up the task
type TaskAssignedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID `json:"task_id"`
	PropertyID uuid.UUID `json:"property_id"`
	VerifierID uuid.UUID `json:"verifier_id"`
}

// NewTaskAssignedEvent creates a new TaskAssignedEvent
func NewTaskAssignedEvent(t *VerificationTask, verifierID uuid.UUID) *TaskAssignedEvent {
	return &TaskAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskAssigned, AggregateTypeVerificationTask, t.ID),
		TaskID:          t.ID,
		PropertyID:      t.PropertyID,
		VerifierID:      verifierID,
	}
}

// EventType returns the event type name
func (e *TaskAssignedEvent) EventType() string {
	return EventTypeTaskAssigned
}

// TaskUnassignedEvent is raised when an assigned task returns to the pool
type TaskUnassignedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID  `json:"task_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	VerifierID *uuid.UUID `json:"verifier_id,omitempty"`
}

// NewTaskUnassignedEvent creates a new TaskUnassignedEvent
func NewTaskUnassignedEvent(t *VerificationTask, verifierID *uuid.UUID) *TaskUnassignedEvent {
	return &TaskUnassignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskUnassigned, AggregateTypeVerificationTask, t.ID),
		TaskID:          t.ID,
		PropertyID:      t.PropertyID,
		VerifierID:      verifierID,
	}
}

// EventType returns the event type name
func (e *TaskUnassignedEvent) EventType() string {
	return EventTypeTaskUnassigned
}

// TaskStartedEvent is raised when the inspection begins
type TaskStartedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID `json:"task_id"`
	PropertyID uuid.UUID `json:"property_id"`
}

// NewTaskStartedEvent creates a new TaskStartedEvent
func NewTaskStartedEvent(t *VerificationTask) *TaskStartedEvent {
	return &TaskStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskStarted, AggregateTypeVerificationTask, t.ID),
		TaskID:          t.ID,
		PropertyID:      t.PropertyID,
	}
}

// EventType returns the event type name
func (e *TaskStartedEvent) EventType() string {
	return EventTypeTaskStarted
}

// TaskCompletedEvent is raised when the inspection concludes. Passed drives
// the property verification feedback.
type TaskCompletedEvent struct {
	shared.BaseDomainEvent
	TaskID       uuid.UUID `json:"task_id"`
	PropertyID   uuid.UUID `json:"property_id"`
	Passed       bool      `json:"passed"`
	QualityScore int       `json:"quality_score"`
}

// NewTaskCompletedEvent creates a new TaskCompletedEvent
func NewTaskCompletedEvent(t *VerificationTask, passed bool) *TaskCompletedEvent {
	score := 0
	if t.QualityScore != nil {
		score = *t.QualityScore
	}
	return &TaskCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskCompleted, AggregateTypeVerificationTask, t.ID),
		TaskID:          t.ID,
		PropertyID:      t.PropertyID,
		Passed:          passed,
		QualityScore:    score,
	}
}

// EventType returns the event type name
func (e *TaskCompletedEvent) EventType() string {
	return EventTypeTaskCompleted
}

// TaskRejectedEvent is raised when the task is closed without passing
type TaskRejectedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID `json:"task_id"`
	PropertyID uuid.UUID `json:"property_id"`
	Reason     string    `json:"reason"`
}

// NewTaskRejectedEvent creates a new TaskRejectedEvent
func NewTaskRejectedEvent(t *VerificationTask, reason string) *TaskRejectedEvent {
	return &TaskRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskRejected, AggregateTypeVerificationTask, t.ID),
		TaskID:          t.ID,
		PropertyID:      t.PropertyID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *TaskRejectedEvent) EventType() string {
	return EventTypeTaskRejected
}

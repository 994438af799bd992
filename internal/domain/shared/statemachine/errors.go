package statemachine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// InvalidTransitionError reports a transition that is not listed in the
// entity kind's adjacency table. It is fatal to the request and not retried.
type InvalidTransitionError struct {
	EntityKind string
	EntityID   uuid.UUID
	From       State
	To         State
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: invalid transition %s -> %s",
		e.EntityKind, e.EntityID, e.From, e.To)
}

// GuardViolationError reports a transition whose edge exists but whose guard
// failed. Rule identifies the violated rule so callers can act on it.
type GuardViolationError struct {
	EntityKind string
	EntityID   uuid.UUID
	From       State
	To         State
	Rule       string
	Detail     string
}

// Error implements the error interface
func (e *GuardViolationError) Error() string {
	return fmt.Sprintf("%s %s: transition %s -> %s rejected by guard %q: %s",
		e.EntityKind, e.EntityID, e.From, e.To, e.Rule, e.Detail)
}

// RuleCapability is the guard rule name used when the requesting actor lacks
// the capability the transition requires.
const RuleCapability = "actor_capability"

// IsInvalidTransition reports whether err is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsGuardViolation reports whether err is a GuardViolationError
func IsGuardViolation(err error) bool {
	var target *GuardViolationError
	return errors.As(err, &target)
}

// ViolatedRule returns the rule name of a guard violation, or empty string
// if err is not a GuardViolationError.
func ViolatedRule(err error) string {
	var target *GuardViolationError
	if errors.As(err, &target) {
		return target.Rule
	}
	return ""
}

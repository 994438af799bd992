// Package statemachine provides the transition validator shared by every
// lifecycle-managed entity (Property, Lease, VerificationTask). Each entity
// kind declares its adjacency table once; aggregate methods ask the machine
// to validate a requested transition before mutating any state.
//
// The machine checks, in order: the requested edge exists, the requesting
// actor holds the capability the edge requires, and every guard on the edge
// holds. Guard failures are always reported, never corrected. The machine
// itself never mutates the subject; applying the new state (and recording
// domain events) stays with the aggregate so that a failed validation leaves
// the entity untouched.
package statemachine

import (
	"github.com/estate/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// State is a single state in an entity's lifecycle
type State string

// Guard is a named precondition attached to a transition edge
type Guard[T any] struct {
	// Rule names the invariant this guard enforces (e.g. "approval_complete")
	Rule string
	// Check returns nil when the invariant holds. A non-nil error's message
	// becomes the violation detail.
	Check func(subject T, actor identity.Actor) error
}

// Rule declares one edge in the adjacency table
type Rule[T any] struct {
	From       State
	To         State
	Capability identity.Capability
	Guards     []Guard[T]
}

// Machine validates transitions for one entity kind
type Machine[T any] struct {
	kind  string
	edges map[State]map[State]Rule[T]
}

// New creates a machine for an entity kind from its transition rules
func New[T any](kind string, rules ...Rule[T]) *Machine[T] {
	m := &Machine[T]{
		kind:  kind,
		edges: make(map[State]map[State]Rule[T]),
	}
	for _, r := range rules {
		if m.edges[r.From] == nil {
			m.edges[r.From] = make(map[State]Rule[T])
		}
		m.edges[r.From][r.To] = r
	}
	return m
}

// Kind returns the entity kind this machine validates
func (m *Machine[T]) Kind() string {
	return m.kind
}

// CanTransition reports whether the edge from -> to exists, ignoring guards
func (m *Machine[T]) CanTransition(from, to State) bool {
	_, ok := m.edges[from][to]
	return ok
}

// Targets returns the states reachable from the given state
func (m *Machine[T]) Targets(from State) []State {
	targets := make([]State, 0, len(m.edges[from]))
	for to := range m.edges[from] {
		targets = append(targets, to)
	}
	return targets
}

// IsTerminal reports whether no edges leave the given state
func (m *Machine[T]) IsTerminal(state State) bool {
	return len(m.edges[state]) == 0
}

// Validate checks the requested transition against the adjacency table, the
// actor's capabilities, and the edge's guards. It returns
// *InvalidTransitionError for a missing edge and *GuardViolationError for a
// capability or guard failure. On nil return the caller may apply the
// transition.
func (m *Machine[T]) Validate(subject T, id uuid.UUID, from, to State, actor identity.Actor) error {
	rule, ok := m.edges[from][to]
	if !ok {
		return &InvalidTransitionError{
			EntityKind: m.kind,
			EntityID:   id,
			From:       from,
			To:         to,
		}
	}

	if rule.Capability != "" && !actor.Has(rule.Capability) {
		return &GuardViolationError{
			EntityKind: m.kind,
			EntityID:   id,
			From:       from,
			To:         to,
			Rule:       RuleCapability,
			Detail:     "actor lacks capability " + string(rule.Capability),
		}
	}

	for _, g := range rule.Guards {
		if err := g.Check(subject, actor); err != nil {
			return &GuardViolationError{
				EntityKind: m.kind,
				EntityID:   id,
				From:       from,
				To:         to,
				Rule:       g.Rule,
				Detail:     err.Error(),
			}
		}
	}

	return nil
}

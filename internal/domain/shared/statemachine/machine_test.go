package statemachine

import (
	"errors"
	"testing"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID       uuid.UUID
	Approved bool
}

const (
	stateDraft     State = "DRAFT"
	statePublished State = "PUBLISHED"
	stateRetired   State = "RETIRED"
)

const capPublish identity.Capability = "doc.publish"

func newTestMachine() *Machine[*testDoc] {
	return New[*testDoc]("Document",
		Rule[*testDoc]{
			From:       stateDraft,
			To:         statePublished,
			Capability: capPublish,
			Guards: []Guard[*testDoc]{
				{
					Rule: "approved",
					Check: func(d *testDoc, _ identity.Actor) error {
						if !d.Approved {
							return errors.New("document is not approved")
						}
						return nil
					},
				},
			},
		},
		Rule[*testDoc]{From: statePublished, To: stateRetired},
	)
}

func TestMachine_Validate(t *testing.T) {
	m := newTestMachine()
	actor := identity.NewActorWithCapabilities(uuid.New(), identity.RoleAdmin, capPublish)

	t.Run("valid transition passes", func(t *testing.T) {
		doc := &testDoc{ID: uuid.New(), Approved: true}
		err := m.Validate(doc, doc.ID, stateDraft, statePublished, actor)
		assert.NoError(t, err)
	})

	t.Run("missing edge is InvalidTransition", func(t *testing.T) {
		doc := &testDoc{ID: uuid.New(), Approved: true}
		err := m.Validate(doc, doc.ID, stateDraft, stateRetired, actor)
		require.Error(t, err)
		assert.True(t, IsInvalidTransition(err))
		assert.False(t, IsGuardViolation(err))
	})

	t.Run("guard failure is GuardViolation with rule name", func(t *testing.T) {
		doc := &testDoc{ID: uuid.New(), Approved: false}
		err := m.Validate(doc, doc.ID, stateDraft, statePublished, actor)
		require.Error(t, err)
		assert.True(t, IsGuardViolation(err))
		assert.Equal(t, "approved", ViolatedRule(err))
	})

	t.Run("missing capability is GuardViolation", func(t *testing.T) {
		doc := &testDoc{ID: uuid.New(), Approved: true}
		noCaps := identity.NewActorWithCapabilities(uuid.New(), identity.RoleTenant)
		err := m.Validate(doc, doc.ID, stateDraft, statePublished, noCaps)
		require.Error(t, err)
		assert.Equal(t, RuleCapability, ViolatedRule(err))
	})

	t.Run("system actor bypasses capability check", func(t *testing.T) {
		doc := &testDoc{ID: uuid.New(), Approved: true}
		err := m.Validate(doc, doc.ID, stateDraft, statePublished, identity.SystemActor())
		assert.NoError(t, err)
	})

	t.Run("edge without capability needs no actor rights", func(t *testing.T) {
		doc := &testDoc{ID: uuid.New()}
		noCaps := identity.NewActorWithCapabilities(uuid.New(), identity.RoleTenant)
		err := m.Validate(doc, doc.ID, statePublished, stateRetired, noCaps)
		assert.NoError(t, err)
	})
}

func TestMachine_Topology(t *testing.T) {
	m := newTestMachine()

	assert.True(t, m.CanTransition(stateDraft, statePublished))
	assert.False(t, m.CanTransition(stateRetired, stateDraft))
	assert.True(t, m.IsTerminal(stateRetired))
	assert.False(t, m.IsTerminal(stateDraft))
	assert.ElementsMatch(t, []State{statePublished}, m.Targets(stateDraft))
	assert.Empty(t, m.Targets(stateRetired))
	assert.Equal(t, "Document", m.Kind())
}

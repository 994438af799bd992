package listing

import (
	"testing"

	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/shared/statemachine"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProperty(t *testing.T) *Property {
	p, err := NewProperty(uuid.New(), "2BHK Riverside Apartment", "14 Canal Road", "Pune")
	require.NoError(t, err)
	return p
}

func ownerActor() identity.Actor {
	return identity.NewActor(uuid.New(), identity.RoleOwner)
}

func verifyTestProperty(t *testing.T, p *Property) {
	require.NoError(t, p.StartVerification())
	require.NoError(t, p.CompleteVerification(true))
}

func TestNewProperty(t *testing.T) {
	t.Run("creates draft unavailable property", func(t *testing.T) {
		p := createTestProperty(t)
		assert.Equal(t, PropertyStatusDraft, p.Status)
		assert.False(t, p.Available)
		assert.Equal(t, VerificationPending, p.VerificationStatus)
		assert.Equal(t, 1, p.Version)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := NewProperty(uuid.Nil, "Title", "Address", "City")
		assert.Error(t, err)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewProperty(uuid.New(), "", "Address", "City")
		assert.Error(t, err)
	})
}

func TestPropertyStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PropertyStatus
		isValid bool
	}{
		{PropertyStatusDraft, true},
		{PropertyStatusActive, true},
		{PropertyStatusRented, true},
		{PropertyStatusMaintenance, true},
		{PropertyStatusInactive, true},
		{PropertyStatusSold, true},
		{PropertyStatus("INVALID"), false},
		{PropertyStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestProperty_Activate(t *testing.T) {
	t.Run("unverified property cannot be listed", func(t *testing.T) {
		p := createTestProperty(t)
		err := p.Activate(ownerActor())
		require.Error(t, err)
		assert.True(t, statemachine.IsGuardViolation(err))
		assert.Equal(t, "property_verified", statemachine.ViolatedRule(err))
		assert.Equal(t, PropertyStatusDraft, p.Status)
	})

	t.Run("verified property is listed and available", func(t *testing.T) {
		p := createTestProperty(t)
		verifyTestProperty(t, p)

		require.NoError(t, p.Activate(ownerActor()))
		assert.Equal(t, PropertyStatusActive, p.Status)
		assert.True(t, p.Available)
		assert.NotNil(t, p.ListedAt)
	})

	t.Run("tenant cannot list a property", func(t *testing.T) {
		p := createTestProperty(t)
		verifyTestProperty(t, p)

		err := p.Activate(identity.NewActor(uuid.New(), identity.RoleTenant))
		require.Error(t, err)
		assert.Equal(t, statemachine.RuleCapability, statemachine.ViolatedRule(err))
	})
}

func TestProperty_RentCascade(t *testing.T) {
	p := createTestProperty(t)
	verifyTestProperty(t, p)
	require.NoError(t, p.Activate(ownerActor()))

	leaseID := uuid.New()

	t.Run("mark rented clears availability", func(t *testing.T) {
		require.NoError(t, p.MarkRented(identity.SystemActor(), leaseID))
		assert.Equal(t, PropertyStatusRented, p.Status)
		assert.False(t, p.Available)
	})

	t.Run("rented property cannot be sold", func(t *testing.T) {
		err := p.MarkSold(ownerActor())
		require.Error(t, err)
		assert.True(t, statemachine.IsInvalidTransition(err))
	})

	t.Run("release restores availability", func(t *testing.T) {
		require.NoError(t, p.Release(identity.SystemActor(), leaseID))
		assert.Equal(t, PropertyStatusActive, p.Status)
		assert.True(t, p.Available)
		assert.Nil(t, p.RentedAt)
	})
}

func TestProperty_SoldIsTerminal(t *testing.T) {
	p := createTestProperty(t)
	verifyTestProperty(t, p)
	require.NoError(t, p.Activate(ownerActor()))
	require.NoError(t, p.MarkSold(ownerActor()))

	assert.True(t, p.IsTerminal())
	assert.False(t, p.Available)

	err := p.Activate(ownerActor())
	require.Error(t, err)
	assert.True(t, statemachine.IsInvalidTransition(err))
}

func TestProperty_Verification(t *testing.T) {
	t.Run("completion must follow start", func(t *testing.T) {
		p := createTestProperty(t)
		err := p.CompleteVerification(true)
		require.Error(t, err)
		assert.True(t, statemachine.IsInvalidTransition(err))
	})

	t.Run("rejected property can be resubmitted", func(t *testing.T) {
		p := createTestProperty(t)
		require.NoError(t, p.StartVerification())
		require.NoError(t, p.CompleteVerification(false))
		assert.Equal(t, VerificationRejected, p.VerificationStatus)

		require.NoError(t, p.ResetVerification())
		assert.Equal(t, VerificationPending, p.VerificationStatus)
	})
}

func TestProperty_MaintenanceCycle(t *testing.T) {
	p := createTestProperty(t)
	verifyTestProperty(t, p)
	owner := ownerActor()
	require.NoError(t, p.Activate(owner))

	require.NoError(t, p.EnterMaintenance(owner))
	assert.Equal(t, PropertyStatusMaintenance, p.Status)
	assert.False(t, p.Available)

	require.NoError(t, p.Activate(owner))
	assert.Equal(t, PropertyStatusActive, p.Status)
	assert.True(t, p.Available)
}

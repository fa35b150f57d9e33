package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestCustomerActivate(t *testing.T) {
	t.Run("PendingToActive", func(t *testing.T) {
		customer := Customer{Status: StatusPending}
		assert.NoError(t, customer.Activate())
		assert.Equal(t, StatusActive, customer.Status)
	})

	t.Run("ActiveRejected", func(t *testing.T) {
		customer := Customer{Status: StatusActive}
		assert.ErrorIs(t, customer.Activate(), ErrNotPending)
	})

	t.Run("InactiveRejected", func(t *testing.T) {
		customer := Customer{Status: StatusInactive}
		assert.ErrorIs(t, customer.Activate(), ErrNotPending)
		assert.Equal(t, StatusInactive, customer.Status)
	})
}

func TestCustomerDeactivate(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	splitterID := node.Generate()
	port := 3

	t.Run("ActiveToInactiveKeepsBinding", func(t *testing.T) {
		customer := Customer{Status: StatusActive, SplitterID: &splitterID, AssignedPort: &port}
		assert.NoError(t, customer.Deactivate())
		assert.Equal(t, StatusInactive, customer.Status)
		assert.Equal(t, splitterID, *customer.SplitterID)
		assert.Equal(t, port, *customer.AssignedPort)
	})

	t.Run("PendingToInactive", func(t *testing.T) {
		customer := Customer{Status: StatusPending}
		assert.NoError(t, customer.Deactivate())
		assert.Equal(t, StatusInactive, customer.Status)
	})

	t.Run("AlreadyInactive", func(t *testing.T) {
		customer := Customer{Status: StatusInactive}
		assert.ErrorIs(t, customer.Deactivate(), ErrAlreadyInactive)
	})
}

func TestCustomerReactivate(t *testing.T) {
	t.Run("InactiveToPending", func(t *testing.T) {
		customer := Customer{Status: StatusInactive}
		assert.NoError(t, customer.Reactivate())
		assert.Equal(t, StatusPending, customer.Status)
	})

	t.Run("ActiveRejected", func(t *testing.T) {
		customer := Customer{Status: StatusActive}
		assert.ErrorIs(t, customer.Reactivate(), ErrAlreadyActive)
	})

	t.Run("PendingRejected", func(t *testing.T) {
		customer := Customer{Status: StatusPending}
		assert.ErrorIs(t, customer.Reactivate(), ErrAlreadyPending)
	})
}

func TestCustomerOccupying(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	splitterID := node.Generate()
	port := 5

	t.Run("ActiveWithPort", func(t *testing.T) {
		customer := Customer{Status: StatusActive, SplitterID: &splitterID, AssignedPort: &port}
		assert.True(t, customer.Occupying())
	})

	t.Run("PendingWithPort", func(t *testing.T) {
		customer := Customer{Status: StatusPending, SplitterID: &splitterID, AssignedPort: &port}
		assert.True(t, customer.Occupying())
	})

	t.Run("InactiveWithPort", func(t *testing.T) {
		customer := Customer{Status: StatusInactive, SplitterID: &splitterID, AssignedPort: &port}
		assert.False(t, customer.Occupying())
	})

	t.Run("ActiveWithoutPort", func(t *testing.T) {
		customer := Customer{Status: StatusActive, SplitterID: &splitterID}
		assert.False(t, customer.Occupying())
	})

	t.Run("ActiveWithoutSplitter", func(t *testing.T) {
		customer := Customer{Status: StatusActive, AssignedPort: &port}
		assert.False(t, customer.Occupying())
	})
}

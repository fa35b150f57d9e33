package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/internal/customer/domain"
	"github.com/opennoc/fiberplant/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_customer_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.Exec(`CREATE TABLE customers (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		neighborhood TEXT NOT NULL DEFAULT '',
		plan TEXT NOT NULL DEFAULT '',
		connection_type TEXT NOT NULL DEFAULT 'Wired',
		status TEXT NOT NULL DEFAULT 'Pending',
		splitter_id BIGINT,
		assigned_port INT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		genID: node,
		repo:  repository.Provide(),
	}
	return svc, db
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("StartsPendingUnbound", func(t *testing.T) {
		customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
			Name:    "  John Doe  ",
			Address: "12 Elm St",
			Plan:    "300M",
		})
		require.NoError(t, err)
		assert.Equal(t, "John Doe", customer.Name)
		assert.Equal(t, domain.StatusPending, customer.Status)
		assert.Equal(t, domain.ConnectionWired, customer.ConnectionType)
		assert.Nil(t, customer.SplitterID)
		assert.Nil(t, customer.AssignedPort)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})
}

func TestUpdateCustomer(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Jane"})
	require.NoError(t, err)

	t.Run("PartialUpdate", func(t *testing.T) {
		plan := "600M"
		wireless := domain.ConnectionWireless
		updated, err := svc.Update(ctx, customer.ID, domain.UpdateCustomerRequest{
			Plan:           &plan,
			ConnectionType: &wireless,
		})
		require.NoError(t, err)
		assert.Equal(t, "600M", updated.Plan)
		assert.Equal(t, domain.ConnectionWireless, updated.ConnectionType)
		assert.Equal(t, "Jane", updated.Name)
	})

	t.Run("BlankNameRejected", func(t *testing.T) {
		blank := "  "
		_, err := svc.Update(ctx, customer.ID, domain.UpdateCustomerRequest{Name: &blank})
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("StatusUntouchedByUpdate", func(t *testing.T) {
		require.NoError(t, db.Exec(`UPDATE customers SET status = 'Active' WHERE id = ?`, customer.ID).Error)
		name := "Jane S"
		updated, err := svc.Update(ctx, customer.ID, domain.UpdateCustomerRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, updated.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		node, _ := snowflake.NewNode(2)
		name := "x"
		_, err := svc.Update(ctx, node.Generate(), domain.UpdateCustomerRequest{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListCustomers(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: fmt.Sprintf("c-%d", i)})
		require.NoError(t, err)
	}
	require.NoError(t, db.Exec(`UPDATE customers SET status = 'Active' WHERE name = 'c-0'`).Error)

	all, err := svc.List(ctx, domain.ListCustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListByStatus(ctx, domain.StatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	pending, err := svc.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	limited, err := svc.List(ctx, domain.ListCustomerFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/internal/topology/domain"
	"github.com/opennoc/fiberplant/internal/topology/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_topology_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE headends (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE fdhs (
			id BIGINT PRIMARY KEY,
			headend_id BIGINT,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			max_ports INT NOT NULL DEFAULT 8,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE splitters (
			id BIGINT PRIMARY KEY,
			fdh_id BIGINT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			port_capacity INT NOT NULL,
			used_ports INT NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE customers (
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
		)`,
		`CREATE TABLE assets (
			id BIGINT PRIMARY KEY,
			asset_type TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			serial_number TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Available',
			location TEXT NOT NULL DEFAULT '',
			customer_id BIGINT,
			assigned_at DATETIME,
			retire_reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE assignment_records (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			asset_id BIGINT NOT NULL,
			assigned_on DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}

	node, _ := snowflake.NewNode(1)
	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		genID: node,
		repo:  repository.Provide(),
	}
	return svc, db, node
}

func TestCreateHierarchy(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := context.Background()

	headend, err := svc.CreateHeadend(ctx, domain.CreateHeadendRequest{Name: "Central", Region: "Metro"})
	require.NoError(t, err)

	t.Run("FDHUnderHeadend", func(t *testing.T) {
		fdh, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-A", HeadendID: &headend.ID})
		require.NoError(t, err)
		assert.Equal(t, headend.ID, *fdh.HeadendID)
		assert.Equal(t, 8, fdh.MaxPorts)
	})

	t.Run("OrphanFDH", func(t *testing.T) {
		fdh, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-B", MaxPorts: 16})
		require.NoError(t, err)
		assert.Nil(t, fdh.HeadendID)
		assert.Equal(t, 16, fdh.MaxPorts)
	})

	t.Run("FDHUnknownHeadend", func(t *testing.T) {
		missing := node.Generate()
		_, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-C", HeadendID: &missing})
		assert.ErrorIs(t, err, domain.ErrHeadendNotFound)
	})

	t.Run("SplitterValidation", func(t *testing.T) {
		fdh, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-D"})
		require.NoError(t, err)

		_, err = svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: fdh.ID, PortCapacity: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidPortCapacity)

		_, err = svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: node.Generate(), PortCapacity: 8})
		assert.ErrorIs(t, err, domain.ErrFDHNotFound)

		splitter, err := svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: fdh.ID, Model: "SPL-8x", PortCapacity: 8})
		require.NoError(t, err)
		assert.Equal(t, 0, splitter.UsedPorts)

		got, err := svc.GetSplitter(ctx, splitter.ID)
		require.NoError(t, err)
		assert.Equal(t, splitter.ID, got.ID)
	})
}

func TestCustomerTopology(t *testing.T) {
	svc, db, node := setupService(t)
	ctx := context.Background()

	headend, err := svc.CreateHeadend(ctx, domain.CreateHeadendRequest{Name: "Central"})
	require.NoError(t, err)
	fdh, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-A", HeadendID: &headend.ID})
	require.NoError(t, err)
	splitter, err := svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: fdh.ID, PortCapacity: 8})
	require.NoError(t, err)

	customerID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO customers (id, name, status, splitter_id, assigned_port) VALUES (?, 'Jane Smith', 'Active', ?, 4)`,
		customerID, splitter.ID,
	).Error)
	ontID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO assets (id, asset_type, serial_number, status, customer_id) VALUES (?, 'ONT', 'ONT-1', 'Assigned', ?)`,
		ontID, customerID,
	).Error)

	t.Run("FullChain", func(t *testing.T) {
		view, err := svc.CustomerTopology(ctx, customerID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", view.Customer.Name)
		require.NotNil(t, view.ONT)
		assert.Equal(t, ontID, view.ONT.ID)
		assert.Nil(t, view.Router)
		require.NotNil(t, view.Splitter)
		assert.Equal(t, 4, *view.Splitter.Port)
		require.NotNil(t, view.FDH)
		assert.Equal(t, fdh.ID, view.FDH.ID)
		require.NotNil(t, view.Headend)
		assert.Equal(t, headend.ID, view.Headend.ID)
	})

	t.Run("StopsAtMissingHeadend", func(t *testing.T) {
		orphanFDH, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-orphan"})
		require.NoError(t, err)
		orphanSplitter, err := svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: orphanFDH.ID, PortCapacity: 8})
		require.NoError(t, err)

		orphanCustomer := node.Generate()
		require.NoError(t, db.Exec(
			`INSERT INTO customers (id, name, status, splitter_id, assigned_port) VALUES (?, 'loose', 'Pending', ?, 1)`,
			orphanCustomer, orphanSplitter.ID,
		).Error)

		view, err := svc.CustomerTopology(ctx, orphanCustomer)
		require.NoError(t, err)
		assert.NotNil(t, view.Splitter)
		assert.NotNil(t, view.FDH)
		assert.Nil(t, view.Headend)
	})

	t.Run("UnboundCustomer", func(t *testing.T) {
		unbound := node.Generate()
		require.NoError(t, db.Exec(
			`INSERT INTO customers (id, name, status) VALUES (?, 'no splitter', 'Pending')`,
			unbound,
		).Error)

		view, err := svc.CustomerTopology(ctx, unbound)
		require.NoError(t, err)
		assert.Nil(t, view.Splitter)
		assert.Nil(t, view.FDH)
		assert.Nil(t, view.Headend)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.CustomerTopology(ctx, node.Generate())
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func TestHubTopology(t *testing.T) {
	svc, db, node := setupService(t)
	ctx := context.Background()

	fdh, err := svc.CreateFDH(ctx, domain.CreateFDHRequest{Name: "FDH-A"})
	require.NoError(t, err)
	first, err := svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: fdh.ID, PortCapacity: 8})
	require.NoError(t, err)
	second, err := svc.CreateSplitter(ctx, domain.CreateSplitterRequest{FDHID: fdh.ID, PortCapacity: 16})
	require.NoError(t, err)

	for port, splitterID := range map[int]snowflake.ID{2: first.ID, 5: first.ID, 1: second.ID} {
		require.NoError(t, db.Exec(
			`INSERT INTO customers (id, name, status, splitter_id, assigned_port) VALUES (?, ?, 'Active', ?, ?)`,
			node.Generate(), fmt.Sprintf("c-%d", port), splitterID, port,
		).Error)
	}

	view, err := svc.HubTopology(ctx, fdh.ID)
	require.NoError(t, err)
	assert.Equal(t, fdh.ID, view.FDH.ID)
	require.Len(t, view.Splitters, 2)
	assert.Equal(t, 3, view.TotalCustomers)

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.HubTopology(ctx, node.Generate())
		assert.ErrorIs(t, err, domain.ErrFDHNotFound)
	})
}

func TestSearchDeviceBySerial(t *testing.T) {
	svc, db, node := setupService(t)
	ctx := context.Background()

	customerID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO customers (id, name, status) VALUES (?, 'Bob Johnson', 'Active')`,
		customerID,
	).Error)

	assetID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO assets (id, asset_type, serial_number, status, customer_id) VALUES (?, 'ONT', 'ONT-X9100', 'Assigned', ?)`,
		assetID, customerID,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO assignment_records (id, customer_id, asset_id, assigned_on) VALUES (?, ?, ?, ?)`,
		node.Generate(), customerID, assetID, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
	).Error)

	t.Run("Found", func(t *testing.T) {
		result, err := svc.SearchDeviceBySerial(ctx, "  ONT-X9100 ")
		require.NoError(t, err)
		assert.Equal(t, assetID, result.Asset.ID)
		require.NotNil(t, result.Topology)
		assert.Equal(t, "Bob Johnson", result.Topology.Customer.Name)
		require.Len(t, result.History, 1)
		assert.Equal(t, "Bob Johnson", result.History[0].CustomerName)
	})

	t.Run("UnassignedDevice", func(t *testing.T) {
		require.NoError(t, db.Exec(
			`INSERT INTO assets (id, asset_type, serial_number, status) VALUES (?, 'Router', 'RTR-1', 'Available')`,
			node.Generate(),
		).Error)
		result, err := svc.SearchDeviceBySerial(ctx, "RTR-1")
		require.NoError(t, err)
		assert.Nil(t, result.Topology)
		assert.Empty(t, result.History)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.SearchDeviceBySerial(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
		_, err = svc.SearchDeviceBySerial(ctx, "   ")
		assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
	})
}

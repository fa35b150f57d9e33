package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opennoc/fiberplant/internal/asset/domain"
	"github.com/opennoc/fiberplant/internal/asset/repository"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_asset_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
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
		`CREATE UNIQUE INDEX uniq_assets_serial_number ON assets (serial_number)`,
		`CREATE TABLE customers (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending'
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
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: clk,
		genID: node,
		repo:  repository.Provide(),
	}
	return svc, db, clk, node
}

func TestCreateAsset(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		asset, err := svc.Create(ctx, domain.CreateAssetRequest{
			AssetType:    domain.AssetTypeONT,
			Model:        " X-9100 ",
			SerialNumber: " ONT-001 ",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.AssetStatusAvailable, asset.Status)
		assert.Equal(t, "X-9100", asset.Model)
		assert.Equal(t, "ONT-001", asset.SerialNumber)
	})

	t.Run("DuplicateSerial", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateAssetRequest{
			AssetType:    domain.AssetTypeONT,
			SerialNumber: "ONT-001",
		})
		assert.ErrorIs(t, err, domain.ErrSerialTaken)
	})

	t.Run("BadType", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateAssetRequest{
			AssetType:    domain.AssetType("Modem"),
			SerialNumber: "M-1",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAssetType)
	})

	t.Run("EmptySerial", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateAssetRequest{
			AssetType:    domain.AssetTypeONT,
			SerialNumber: "   ",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidSerial)
	})
}

func TestListAssets(t *testing.T) {
	svc, db, _, node := setupService(t)
	ctx := context.Background()

	for i, typ := range []domain.AssetType{domain.AssetTypeONT, domain.AssetTypeONT, domain.AssetTypeRouter} {
		_, err := svc.Create(ctx, domain.CreateAssetRequest{
			AssetType:    typ,
			SerialNumber: fmt.Sprintf("SN-%d", i),
		})
		require.NoError(t, err)
	}
	require.NoError(t, db.Exec(
		`UPDATE assets SET status = 'Assigned', customer_id = ? WHERE serial_number = 'SN-0'`,
		node.Generate(),
	).Error)

	onts, err := svc.List(ctx, domain.ListAssetFilter{AssetType: domain.AssetTypeONT})
	require.NoError(t, err)
	assert.Len(t, onts, 2)

	available, err := svc.List(ctx, domain.ListAssetFilter{Status: domain.AssetStatusAvailable})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	availableONTs, err := svc.List(ctx, domain.ListAssetFilter{
		AssetType: domain.AssetTypeONT,
		Status:    domain.AssetStatusAvailable,
	})
	require.NoError(t, err)
	assert.Len(t, availableONTs, 1)
}

func TestUpdateAndDeleteAsset(t *testing.T) {
	svc, db, _, node := setupService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, domain.CreateAssetRequest{
		AssetType:    domain.AssetTypeRouter,
		SerialNumber: "RTR-1",
	})
	require.NoError(t, err)

	t.Run("PartialUpdate", func(t *testing.T) {
		model := "WN1200"
		updated, err := svc.Update(ctx, asset.ID, domain.UpdateAssetRequest{Model: &model})
		require.NoError(t, err)
		assert.Equal(t, "WN1200", updated.Model)
		assert.Equal(t, "RTR-1", updated.SerialNumber)
	})

	t.Run("DeleteAssignedRefused", func(t *testing.T) {
		require.NoError(t, db.Exec(
			`UPDATE assets SET status = 'Assigned', customer_id = ? WHERE id = ?`,
			node.Generate(), asset.ID,
		).Error)
		assert.ErrorIs(t, svc.Delete(ctx, asset.ID), domain.ErrAssetInUse)
	})

	t.Run("DeleteAvailable", func(t *testing.T) {
		require.NoError(t, db.Exec(
			`UPDATE assets SET status = 'Available', customer_id = NULL WHERE id = ?`,
			asset.ID,
		).Error)
		require.NoError(t, svc.Delete(ctx, asset.ID))
		_, err := svc.GetByID(ctx, asset.ID)
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})
}

func TestLifecycleDetails(t *testing.T) {
	svc, db, clk, node := setupService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, domain.CreateAssetRequest{
		AssetType:    domain.AssetTypeONT,
		SerialNumber: "ONT-H1",
	})
	require.NoError(t, err)

	oldCustomer := node.Generate()
	currentCustomer := node.Generate()
	require.NoError(t, db.Exec(`INSERT INTO customers (id, name) VALUES (?, 'Old Owner'), (?, 'Current Owner')`, oldCustomer, currentCustomer).Error)

	require.NoError(t, db.Exec(
		`INSERT INTO assignment_records (id, customer_id, asset_id, assigned_on) VALUES (?, ?, ?, ?)`,
		node.Generate(), oldCustomer, asset.ID, clk.Now().Add(-90*24*time.Hour),
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO assignment_records (id, customer_id, asset_id, assigned_on) VALUES (?, ?, ?, ?)`,
		node.Generate(), currentCustomer, asset.ID, clk.Now().Add(-10*24*time.Hour),
	).Error)
	require.NoError(t, db.Exec(
		`UPDATE assets SET status = 'Assigned', customer_id = ? WHERE id = ?`,
		currentCustomer, asset.ID,
	).Error)

	details, err := svc.LifecycleDetails(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, details.TotalAssignments)
	require.Len(t, details.AssignmentHistory, 2)
	assert.Equal(t, "Current Owner", details.AssignmentHistory[0].CustomerName)
	assert.Equal(t, 10, details.AssignmentHistory[0].DurationDays)
	assert.Equal(t, "Old Owner", details.AssignmentHistory[1].CustomerName)
	require.NotNil(t, details.CurrentAssignment)
	assert.Equal(t, currentCustomer, details.CurrentAssignment.CustomerID)

	t.Run("NoHistory", func(t *testing.T) {
		bare, err := svc.Create(ctx, domain.CreateAssetRequest{
			AssetType:    domain.AssetTypeONT,
			SerialNumber: "ONT-H2",
		})
		require.NoError(t, err)

		details, err := svc.LifecycleDetails(ctx, bare.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, details.TotalAssignments)
		assert.Nil(t, details.CurrentAssignment)
	})
}

func TestUtilizationStats(t *testing.T) {
	svc, db, _, node := setupService(t)
	ctx := context.Background()

	rows := []struct {
		typ    string
		status string
	}{
		{"ONT", "Available"},
		{"ONT", "Available"},
		{"ONT", "Assigned"},
		{"ONT", "Faulty"},
		{"Router", "Assigned"},
		{"Router", "Retired"},
	}
	for i, row := range rows {
		require.NoError(t, db.Exec(
			`INSERT INTO assets (id, asset_type, serial_number, status) VALUES (?, ?, ?, ?)`,
			node.Generate(), row.typ, fmt.Sprintf("U-%d", i), row.status,
		).Error)
	}

	stats, err := svc.UtilizationStats(ctx)
	require.NoError(t, err)

	ont := stats[domain.AssetTypeONT]
	assert.Equal(t, 4, ont.Total)
	assert.Equal(t, 2, ont.Available)
	assert.Equal(t, 1, ont.Assigned)
	assert.Equal(t, 1, ont.Faulty)
	assert.Equal(t, 25.0, ont.UtilizationRate)

	router := stats[domain.AssetTypeRouter]
	assert.Equal(t, 2, router.Total)
	assert.Equal(t, 50.0, router.UtilizationRate)
}

func TestDueForMaintenance(t *testing.T) {
	svc, db, clk, node := setupService(t)
	ctx := context.Background()

	fresh := clk.Now().Add(-30 * 24 * time.Hour)
	stale := clk.Now().Add(-400 * 24 * time.Hour)
	customerID := node.Generate()

	require.NoError(t, db.Exec(
		`INSERT INTO assets (id, asset_type, serial_number, status, customer_id, assigned_at) VALUES (?, 'ONT', 'M-1', 'Assigned', ?, ?)`,
		node.Generate(), customerID, fresh,
	).Error)
	staleID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO assets (id, asset_type, serial_number, status, customer_id, assigned_at) VALUES (?, 'ONT', 'M-2', 'Assigned', ?, ?)`,
		staleID, customerID, stale,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO assets (id, asset_type, serial_number, status) VALUES (?, 'ONT', 'M-3', 'Available')`,
		node.Generate(),
	).Error)

	due, err := svc.DueForMaintenance(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, staleID, due[0].ID)

	t.Run("ZeroThresholdDefaults", func(t *testing.T) {
		due, err := svc.DueForMaintenance(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, due, 1)
	})

	t.Run("TightThreshold", func(t *testing.T) {
		due, err := svc.DueForMaintenance(ctx, 7*24*time.Hour)
		require.NoError(t, err)
		assert.Len(t, due, 2)
	})
}

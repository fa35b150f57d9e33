package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.Exec(`CREATE TABLE assignment_records (
		id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		asset_id BIGINT NOT NULL,
		assigned_on DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: clk,
		genID: node,
	}
	return svc, clk, node
}

func TestAppendAndHistory(t *testing.T) {
	svc, clk, node := setupService(t)
	ctx := context.Background()

	customerID := node.Generate()
	otherCustomerID := node.Generate()
	assetID := node.Generate()

	first, err := svc.Append(ctx, nil, customerID, assetID, clk.Now())
	require.NoError(t, err)
	assert.Equal(t, customerID, first.CustomerID)
	assert.Equal(t, assetID, first.AssetID)

	clk.Advance(48 * time.Hour)
	second, err := svc.Append(ctx, nil, otherCustomerID, assetID, clk.Now())
	require.NoError(t, err)

	t.Run("ByAssetNewestFirst", func(t *testing.T) {
		records, err := svc.HistoryByAsset(ctx, assetID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, second.ID, records[0].ID)
		assert.Equal(t, first.ID, records[1].ID)
	})

	t.Run("ByCustomer", func(t *testing.T) {
		records, err := svc.HistoryByCustomer(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, first.ID, records[0].ID)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		records, err := svc.HistoryByAsset(ctx, node.Generate())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestAppendZeroTimeUsesClock(t *testing.T) {
	svc, clk, node := setupService(t)

	record, err := svc.Append(context.Background(), nil, node.Generate(), node.Generate(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, clk.Now(), record.AssignedOn)
}

func TestCountSince(t *testing.T) {
	svc, clk, node := setupService(t)
	ctx := context.Background()

	start := clk.Now()
	_, err := svc.Append(ctx, nil, node.Generate(), node.Generate(), start.Add(-40*24*time.Hour))
	require.NoError(t, err)
	_, err = svc.Append(ctx, nil, node.Generate(), node.Generate(), start.Add(-5*24*time.Hour))
	require.NoError(t, err)
	_, err = svc.Append(ctx, nil, node.Generate(), node.Generate(), start)
	require.NoError(t, err)

	count, err := svc.CountSince(ctx, start.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteForCustomer(t *testing.T) {
	svc, clk, node := setupService(t)
	ctx := context.Background()

	customerID := node.Generate()
	_, err := svc.Append(ctx, nil, customerID, node.Generate(), clk.Now())
	require.NoError(t, err)
	_, err = svc.Append(ctx, nil, customerID, node.Generate(), clk.Now())
	require.NoError(t, err)
	keptID := node.Generate()
	_, err = svc.Append(ctx, nil, keptID, node.Generate(), clk.Now())
	require.NoError(t, err)

	deleted, err := svc.DeleteForCustomer(ctx, nil, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	records, err := svc.HistoryByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, records)

	kept, err := svc.HistoryByCustomer(ctx, keptID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

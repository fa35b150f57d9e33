package ports

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	pkgdb "github.com/opennoc/fiberplant/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_ports_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", stripForUpdate)
	db.Callback().Row().Before("gorm:row").Register("sqlite_strip_for_update_row", stripForUpdate)

	schema := []string{
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
		`CREATE UNIQUE INDEX uniq_customers_splitter_port
			ON customers (splitter_id, assigned_port)
			WHERE status IN ('Active', 'Pending') AND assigned_port IS NOT NULL`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func seedSplitter(t *testing.T, db *gorm.DB, node *snowflake.Node, capacity int) snowflake.ID {
	t.Helper()
	id := node.Generate()
	err := db.Exec(
		`INSERT INTO splitters (id, fdh_id, model, port_capacity, used_ports) VALUES (?, ?, ?, ?, 0)`,
		id, node.Generate(), "SPL-8x", capacity,
	).Error
	require.NoError(t, err)
	return id
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, splitterID snowflake.ID, port int, status string) snowflake.ID {
	t.Helper()
	id := node.Generate()
	err := db.Exec(
		`INSERT INTO customers (id, name, status, splitter_id, assigned_port) VALUES (?, ?, ?, ?, ?)`,
		id, fmt.Sprintf("customer-%d", id), status, splitterID, port,
	).Error
	require.NoError(t, err)
	return id
}

func TestAvailablePorts(t *testing.T) {
	db := setupTestDB(t)
	node, _ := snowflake.NewNode(1)
	log := zaptest.NewLogger(t)
	mgr := NewManager(Params{DB: db, Log: log})
	ctx := context.Background()

	splitterID := seedSplitter(t, db, node, 8)
	seedCustomer(t, db, node, splitterID, 3, "Active")
	seedCustomer(t, db, node, splitterID, 5, "Pending")
	seedCustomer(t, db, node, splitterID, 7, "Inactive")

	t.Run("ExcludesActiveAndPending", func(t *testing.T) {
		available, err := mgr.AvailablePorts(ctx, nil, splitterID)
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2, 4, 6, 7, 8}, available)
	})

	t.Run("MissingSplitterEmpty", func(t *testing.T) {
		available, err := mgr.AvailablePorts(ctx, nil, node.Generate())
		assert.NoError(t, err)
		assert.Empty(t, available)
	})

	t.Run("Idempotent", func(t *testing.T) {
		first, err := mgr.AvailablePorts(ctx, nil, splitterID)
		assert.NoError(t, err)
		second, err := mgr.AvailablePorts(ctx, nil, splitterID)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestRecompute(t *testing.T) {
	db := setupTestDB(t)
	node, _ := snowflake.NewNode(1)
	mgr := NewManager(Params{DB: db, Log: zaptest.NewLogger(t)})
	ctx := context.Background()

	splitterID := seedSplitter(t, db, node, 8)
	seedCustomer(t, db, node, splitterID, 1, "Active")
	seedCustomer(t, db, node, splitterID, 2, "Pending")
	inactiveID := seedCustomer(t, db, node, splitterID, 4, "Inactive")

	// Drift the counter on purpose.
	require.NoError(t, db.Exec(`UPDATE splitters SET used_ports = 7 WHERE id = ?`, splitterID).Error)

	count, err := mgr.Recompute(ctx, nil, splitterID)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	var stored int
	require.NoError(t, db.Raw(`SELECT used_ports FROM splitters WHERE id = ?`, splitterID).Scan(&stored).Error)
	assert.Equal(t, 2, stored)

	// Reactivating the held row changes the count.
	require.NoError(t, db.Exec(`UPDATE customers SET status = 'Pending' WHERE id = ?`, inactiveID).Error)
	count, err = mgr.Recompute(ctx, nil, splitterID)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPortFree(t *testing.T) {
	db := setupTestDB(t)
	node, _ := snowflake.NewNode(1)
	mgr := NewManager(Params{DB: db, Log: zaptest.NewLogger(t)})
	ctx := context.Background()

	splitterID := seedSplitter(t, db, node, 8)
	seedCustomer(t, db, node, splitterID, 2, "Active")
	seedCustomer(t, db, node, splitterID, 6, "Inactive")

	free, err := mgr.PortFree(ctx, nil, splitterID, 2)
	assert.NoError(t, err)
	assert.False(t, free)

	free, err = mgr.PortFree(ctx, nil, splitterID, 3)
	assert.NoError(t, err)
	assert.True(t, free)

	// Inactive rows keep the port value but do not hold the port.
	free, err = mgr.PortFree(ctx, nil, splitterID, 6)
	assert.NoError(t, err)
	assert.True(t, free)
}

func TestLockForAllocation(t *testing.T) {
	db := setupTestDB(t)
	node, _ := snowflake.NewNode(1)
	mgr := NewManager(Params{DB: db, Log: zaptest.NewLogger(t)})
	ctx := context.Background()

	splitterID := seedSplitter(t, db, node, 16)
	seedCustomer(t, db, node, splitterID, 1, "Active")
	_, err := mgr.Recompute(ctx, nil, splitterID)
	require.NoError(t, err)

	t.Run("ReturnsCapacity", func(t *testing.T) {
		capacity, err := mgr.LockForAllocation(ctx, db, splitterID)
		assert.NoError(t, err)
		require.NotNil(t, capacity)
		assert.Equal(t, splitterID, capacity.ID)
		assert.Equal(t, 16, capacity.PortCapacity)
		assert.Equal(t, 1, capacity.UsedPorts)
	})

	t.Run("MissingSplitterNil", func(t *testing.T) {
		capacity, err := mgr.LockForAllocation(ctx, db, node.Generate())
		assert.NoError(t, err)
		assert.Nil(t, capacity)
	})
}

func TestPartialUniqueIndexBackstop(t *testing.T) {
	db := setupTestDB(t)
	node, _ := snowflake.NewNode(1)

	splitterID := seedSplitter(t, db, node, 8)
	seedCustomer(t, db, node, splitterID, 3, "Active")

	// Second occupying row on the same port must hit the index.
	err := db.Exec(
		`INSERT INTO customers (id, name, status, splitter_id, assigned_port) VALUES (?, 'loser', 'Pending', ?, 3)`,
		node.Generate(), splitterID,
	).Error
	require.Error(t, err)
	assert.True(t, pkgdb.IsDuplicateKeyErr(err))

	// An Inactive row on the same port is outside the index predicate.
	err = db.Exec(
		`INSERT INTO customers (id, name, status, splitter_id, assigned_port) VALUES (?, 'parked', 'Inactive', ?, 3)`,
		node.Generate(), splitterID,
	).Error
	assert.NoError(t, err)
}

package ports

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// occupyingWhere is the single predicate deciding whether a customer row
// counts against splitter capacity. Inactive customers keep their stored port
// value but do not occupy the port. Every piece of capacity math in this
// package goes through it; duplicating it inline elsewhere is a bug.
const occupyingWhere = `splitter_id = ? AND assigned_port IS NOT NULL AND status IN ('Active', 'Pending')`

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// Manager computes port availability and maintains the materialized
// used_ports counter on splitters. All methods accept the db handle so
// callers can run them inside their own transaction.
type Manager struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewManager(p Params) *Manager {
	return &Manager{
		db:  p.DB,
		log: p.Log.Named("ports.manager"),
	}
}

type splitterCapacityRow struct {
	ID           snowflake.ID
	PortCapacity int
	UsedPorts    int
}

// AvailablePorts returns {1..portCapacity} minus the ports occupied by
// Active or Pending customers, ascending. A missing splitter yields an empty
// sequence; callers that need existence checking do it separately.
func (m *Manager) AvailablePorts(ctx context.Context, db *gorm.DB, splitterID snowflake.ID) ([]int, error) {
	if db == nil {
		db = m.db
	}

	var splitter splitterCapacityRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, port_capacity, used_ports FROM splitters WHERE id = ?`,
		splitterID,
	).Scan(&splitter).Error
	if err != nil {
		return nil, err
	}
	if splitter.ID == 0 {
		return []int{}, nil
	}

	occupied, err := m.occupiedPorts(ctx, db, splitterID)
	if err != nil {
		return nil, err
	}

	available := make([]int, 0, splitter.PortCapacity)
	for port := 1; port <= splitter.PortCapacity; port++ {
		if _, taken := occupied[port]; !taken {
			available = append(available, port)
		}
	}
	return available, nil
}

func (m *Manager) occupiedPorts(ctx context.Context, db *gorm.DB, splitterID snowflake.ID) (map[int]struct{}, error) {
	var ports []int
	err := db.WithContext(ctx).Raw(
		`SELECT assigned_port FROM customers WHERE `+occupyingWhere,
		splitterID,
	).Scan(&ports).Error
	if err != nil {
		return nil, err
	}
	occupied := make(map[int]struct{}, len(ports))
	for _, port := range ports {
		occupied[port] = struct{}{}
	}
	return occupied, nil
}

// Recompute recounts occupying customers and overwrites the splitter's
// used_ports counter. It must run after every operation that changes a
// customer's status or splitter binding; the counter is never adjusted by
// hand elsewhere.
func (m *Manager) Recompute(ctx context.Context, db *gorm.DB, splitterID snowflake.ID) (int, error) {
	if db == nil {
		db = m.db
	}

	var count int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(id) FROM customers WHERE `+occupyingWhere,
		splitterID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}

	err = db.WithContext(ctx).Exec(
		`UPDATE splitters SET used_ports = ? WHERE id = ?`,
		count,
		splitterID,
	).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LockForAllocation reads the splitter row FOR UPDATE, serializing
// check-and-reserve sequences against concurrent onboarding on the same
// splitter. Returns nil when the splitter does not exist.
func (m *Manager) LockForAllocation(ctx context.Context, tx *gorm.DB, splitterID snowflake.ID) (*SplitterCapacity, error) {
	var splitter splitterCapacityRow
	err := tx.WithContext(ctx).Raw(
		`SELECT id, port_capacity, used_ports FROM splitters WHERE id = ? FOR UPDATE`,
		splitterID,
	).Scan(&splitter).Error
	if err != nil {
		return nil, err
	}
	if splitter.ID == 0 {
		return nil, nil
	}
	return &SplitterCapacity{
		ID:           splitter.ID,
		PortCapacity: splitter.PortCapacity,
		UsedPorts:    splitter.UsedPorts,
	}, nil
}

type SplitterCapacity struct {
	ID           snowflake.ID
	PortCapacity int
	UsedPorts    int
}

// PortFree reports whether the given port is currently unoccupied. Callers
// must hold the splitter lock when using the answer to reserve the port.
func (m *Manager) PortFree(ctx context.Context, db *gorm.DB, splitterID snowflake.ID, port int) (bool, error) {
	if db == nil {
		db = m.db
	}
	var count int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(id) FROM customers WHERE `+occupyingWhere+` AND assigned_port = ?`,
		splitterID,
		port,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

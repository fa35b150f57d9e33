package ports

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/config"
	obsmetrics "github.com/opennoc/fiberplant/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Drift is one splitter whose stored counter diverged from the recount.
// Any drift is a defect somewhere in the write paths; the reconciler repairs
// the counter and logs loudly so the offending path can be found.
type Drift struct {
	SplitterID snowflake.ID
	Stored     int
	Recomputed int
}

type ReconcilerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Manager   *Manager
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

// Reconciler periodically asserts that every splitter's used_ports equals the
// recomputed occupancy count, repairing and reporting divergence.
type Reconciler struct {
	db      *gorm.DB
	log     *zap.Logger
	manager *Manager
	metrics *obsmetrics.Metrics

	interval time.Duration
	onBoot   bool
	stop     chan struct{}
	done     chan struct{}
}

func NewReconciler(p ReconcilerParams) *Reconciler {
	r := &Reconciler{
		db:       p.DB,
		log:      p.Log.Named("ports.reconciler"),
		manager:  p.Manager,
		metrics:  p.Metrics,
		interval: p.Cfg.ReconcileEvery,
		onBoot:   p.Cfg.ReconcileOnBoot,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go r.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(r.stop)
			select {
			case <-r.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return r
}

func (r *Reconciler) run() {
	defer close(r.done)

	if r.onBoot {
		r.sweep()
	}
	if r.interval <= 0 {
		<-r.stop
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *Reconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	drifts, err := r.ReconcileOnce(ctx)
	if err != nil {
		r.log.Error("reconcile sweep failed", zap.Error(err))
		return
	}
	r.metrics.RecordReconcile(len(drifts))
	for _, drift := range drifts {
		r.log.Warn("used_ports drift repaired",
			zap.String("splitter_id", drift.SplitterID.String()),
			zap.Int("stored", drift.Stored),
			zap.Int("recomputed", drift.Recomputed),
		)
	}
}

// ReconcileOnce sweeps every splitter, repairing counters that diverged, and
// returns the drift found. Each splitter is repaired in its own transaction
// so one failure does not abandon the sweep.
func (r *Reconciler) ReconcileOnce(ctx context.Context) ([]Drift, error) {
	var splitters []splitterCapacityRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, port_capacity, used_ports FROM splitters ORDER BY id ASC`,
	).Scan(&splitters).Error
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, splitter := range splitters {
		splitter := splitter
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := r.manager.LockForAllocation(ctx, tx, splitter.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				return nil
			}
			recomputed, err := r.manager.Recompute(ctx, tx, splitter.ID)
			if err != nil {
				return err
			}
			if recomputed != locked.UsedPorts {
				drifts = append(drifts, Drift{
					SplitterID: splitter.ID,
					Stored:     locked.UsedPorts,
					Recomputed: recomputed,
				})
			}
			return nil
		})
		if err != nil {
			return drifts, err
		}
	}
	return drifts, nil
}

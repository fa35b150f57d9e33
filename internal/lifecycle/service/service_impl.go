package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	"github.com/opennoc/fiberplant/internal/clock"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	deploymentdomain "github.com/opennoc/fiberplant/internal/deployment/domain"
	ledgerdomain "github.com/opennoc/fiberplant/internal/ledger/domain"
	"github.com/opennoc/fiberplant/internal/lifecycle/domain"
	"github.com/opennoc/fiberplant/internal/observability/metrics"
	"github.com/opennoc/fiberplant/internal/ports"
	topologydomain "github.com/opennoc/fiberplant/internal/topology/domain"
	"github.com/opennoc/fiberplant/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	GenID          *snowflake.Node
	Metrics        *metrics.Metrics `optional:"true"`
	Ports          *ports.Manager
	CustomerRepo   customerdomain.Repository
	AssetRepo      assetdomain.Repository
	TopologyRepo   topologydomain.Repository
	DeploymentRepo deploymentdomain.Repository
	Ledger         ledgerdomain.Service
	Audit          auditdomain.Service
}

// Service orchestrates every multi-step lifecycle operation. Each method
// validates its preconditions under row locks inside one transaction and
// commits or rolls back as a unit; BulkReclaim is the only place where
// per-item transactions are deliberate.
type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	genID          *snowflake.Node
	metrics        *metrics.Metrics
	ports          *ports.Manager
	customerRepo   customerdomain.Repository
	assetRepo      assetdomain.Repository
	topologyRepo   topologydomain.Repository
	deploymentRepo deploymentdomain.Repository
	ledger         ledgerdomain.Service
	audit          auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("lifecycle.service"),
		clock:          p.Clock,
		genID:          p.GenID,
		metrics:        p.Metrics,
		ports:          p.Ports,
		customerRepo:   p.CustomerRepo,
		assetRepo:      p.AssetRepo,
		topologyRepo:   p.TopologyRepo,
		deploymentRepo: p.DeploymentRepo,
		ledger:         p.Ledger,
		audit:          p.Audit,
	}
}

func (s *Service) Onboard(ctx context.Context, req domain.OnboardRequest) (domain.OnboardResult, error) {
	var result domain.OnboardResult
	err := s.transact(ctx, "onboard", func(tx *gorm.DB) error {
		if strings.TrimSpace(req.Customer.Name) == "" {
			return customerdomain.ErrInvalidName
		}

		capacity, err := s.ports.LockForAllocation(ctx, tx, req.SplitterID)
		if err != nil {
			return err
		}
		if capacity == nil {
			return domain.ErrSplitterNotFound
		}
		if req.Port < 1 || req.Port > capacity.PortCapacity {
			return domain.ErrPortOutOfRange
		}
		free, err := s.ports.PortFree(ctx, tx, req.SplitterID, req.Port)
		if err != nil {
			return err
		}
		if !free {
			s.metrics.RecordPortConflict()
			return domain.ErrPortUnavailable
		}

		now := s.clock.Now()
		slots, err := s.lockAssetSlots(ctx, tx, []assetSlot{
			{id: req.ONTAssetID, expected: assetdomain.AssetTypeONT},
			{id: req.RouterAssetID, expected: assetdomain.AssetTypeRouter},
		})
		if err != nil {
			return err
		}

		connection := req.Customer.ConnectionType
		if connection == "" {
			connection = customerdomain.ConnectionWired
		}
		splitterID := req.SplitterID
		port := req.Port
		customer := customerdomain.Customer{
			ID:             s.genID.Generate(),
			Name:           strings.TrimSpace(req.Customer.Name),
			Address:        strings.TrimSpace(req.Customer.Address),
			Neighborhood:   strings.TrimSpace(req.Customer.Neighborhood),
			Plan:           strings.TrimSpace(req.Customer.Plan),
			ConnectionType: connection,
			Status:         customerdomain.StatusPending,
			SplitterID:     &splitterID,
			AssignedPort:   &port,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.customerRepo.Insert(ctx, tx, &customer); err != nil {
			if db.IsDuplicateKeyErr(err) {
				s.metrics.RecordPortConflict()
				return domain.ErrPortUnavailable
			}
			return err
		}

		assigned, err := s.assignSlots(ctx, tx, slots, customer.ID, now)
		if err != nil {
			return err
		}

		if req.FiberLengthMeters != nil {
			line := topologydomain.FiberDropLine{
				ID:           s.genID.Generate(),
				SplitterID:   req.SplitterID,
				CustomerID:   customer.ID,
				LengthMeters: *req.FiberLengthMeters,
				Status:       topologydomain.DropLineActive,
				CreatedAt:    now,
			}
			if err := s.topologyRepo.InsertDropLine(ctx, tx, &line); err != nil {
				return err
			}
		}

		used, err := s.ports.Recompute(ctx, tx, req.SplitterID)
		if err != nil {
			return err
		}

		_ = s.audit.Record(ctx, tx, "", "lifecycle.onboard", "customer", customer.ID.String(), map[string]any{
			"splitter_id": req.SplitterID.String(),
			"port":        req.Port,
			"assets":      len(assigned),
		})

		result = domain.OnboardResult{
			Customer:       customer,
			AssignedAssets: assigned,
			UsedPorts:      used,
		}
		return nil
	})
	return result, err
}

func (s *Service) AssignAssets(ctx context.Context, customerID, ontAssetID, routerAssetID snowflake.ID) (domain.OnboardResult, error) {
	var result domain.OnboardResult
	err := s.transact(ctx, "assign_assets", func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return customerdomain.ErrNotFound
		}
		if customer.Status == customerdomain.StatusInactive {
			return domain.ErrCustomerInactive
		}

		slots, err := s.lockAssetSlots(ctx, tx, []assetSlot{
			{id: &ontAssetID, expected: assetdomain.AssetTypeONT},
			{id: &routerAssetID, expected: assetdomain.AssetTypeRouter},
		})
		if err != nil {
			return err
		}

		now := s.clock.Now()
		assigned, err := s.assignSlots(ctx, tx, slots, customer.ID, now)
		if err != nil {
			return err
		}

		used := 0
		if customer.SplitterID != nil {
			if used, err = s.ports.Recompute(ctx, tx, *customer.SplitterID); err != nil {
				return err
			}
		}

		_ = s.audit.Record(ctx, tx, "", "lifecycle.assign_assets", "customer", customer.ID.String(), map[string]any{
			"ont_asset_id":    ontAssetID.String(),
			"router_asset_id": routerAssetID.String(),
		})

		result = domain.OnboardResult{
			Customer:       *customer,
			AssignedAssets: assigned,
			UsedPorts:      used,
		}
		return nil
	})
	return result, err
}

func (s *Service) ReassignAsset(ctx context.Context, assetID, newCustomerID snowflake.ID) (domain.ReassignResult, error) {
	var result domain.ReassignResult
	err := s.transact(ctx, "reassign_asset", func(tx *gorm.DB) error {
		asset, err := s.assetRepo.FindByIDForUpdate(ctx, tx, assetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return assetdomain.ErrAssetNotFound
		}
		if asset.Status == assetdomain.AssetStatusRetired {
			return assetdomain.ErrAssetRetired
		}

		customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, newCustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return customerdomain.ErrNotFound
		}
		if customer.Status == customerdomain.StatusInactive {
			return domain.ErrCustomerInactive
		}
		if asset.CustomerID != nil && *asset.CustomerID == newCustomerID {
			return domain.ErrSameCustomer
		}

		oldCustomerID := asset.CustomerID
		if asset.Status == assetdomain.AssetStatusAssigned {
			if err := asset.Reclaim(); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		if err := asset.Assign(newCustomerID, "", now); err != nil {
			return err
		}
		if err := s.assetRepo.Update(ctx, tx, asset); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, tx, newCustomerID, asset.ID, now); err != nil {
			return err
		}

		_ = s.audit.Record(ctx, tx, "", "lifecycle.reassign_asset", "asset", asset.ID.String(), map[string]any{
			"new_customer_id": newCustomerID.String(),
		})

		result = domain.ReassignResult{
			Asset:         *asset,
			OldCustomerID: oldCustomerID,
			NewCustomerID: newCustomerID,
		}
		return nil
	})
	return result, err
}

func (s *Service) ReplaceFaultyAsset(ctx context.Context, oldAssetID, newAssetID snowflake.ID) (domain.ReplaceResult, error) {
	var result domain.ReplaceResult
	err := s.transact(ctx, "replace_faulty_asset", func(tx *gorm.DB) error {
		oldAsset, err := s.assetRepo.FindByIDForUpdate(ctx, tx, oldAssetID)
		if err != nil {
			return err
		}
		if oldAsset == nil {
			return assetdomain.ErrAssetNotFound
		}
		if oldAsset.CustomerID == nil {
			return assetdomain.ErrAssetNotAssigned
		}
		customerID := *oldAsset.CustomerID

		newAsset, err := s.assetRepo.FindByIDForUpdate(ctx, tx, newAssetID)
		if err != nil {
			return err
		}
		if newAsset == nil {
			return assetdomain.ErrAssetNotFound
		}
		if newAsset.Status != assetdomain.AssetStatusAvailable {
			return assetdomain.ErrAssetNotAvailable
		}
		if newAsset.AssetType != oldAsset.AssetType {
			return assetdomain.ErrAssetTypeMismatch
		}

		now := s.clock.Now()
		if err := oldAsset.MarkFaulty(); err != nil {
			return err
		}
		if err := newAsset.Assign(customerID, oldAsset.AssetType, now); err != nil {
			return err
		}
		if err := s.assetRepo.Update(ctx, tx, oldAsset); err != nil {
			return err
		}
		if err := s.assetRepo.Update(ctx, tx, newAsset); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, tx, customerID, newAsset.ID, now); err != nil {
			return err
		}

		_ = s.audit.Record(ctx, tx, "", "lifecycle.replace_faulty_asset", "asset", oldAsset.ID.String(), map[string]any{
			"replacement_id": newAsset.ID.String(),
			"customer_id":    customerID.String(),
		})

		result = domain.ReplaceResult{
			OldAsset:   *oldAsset,
			NewAsset:   *newAsset,
			CustomerID: customerID,
		}
		return nil
	})
	return result, err
}

// ReclaimCustomerAssets is idempotent on an already-Inactive customer: it
// still reclaims any assets that remain bound. DeactivateCustomer is the
// strict variant.
func (s *Service) ReclaimCustomerAssets(ctx context.Context, customerID snowflake.ID) (domain.ReclaimSummary, error) {
	var summary domain.ReclaimSummary
	err := s.transact(ctx, "reclaim_customer_assets", func(tx *gorm.DB) error {
		reclaimed, customer, err := s.reclaimLocked(ctx, tx, customerID, false)
		if err != nil {
			return err
		}
		_ = s.audit.Record(ctx, tx, "", "lifecycle.reclaim", "customer", customer.ID.String(), map[string]any{
			"reclaimed": len(reclaimed),
		})
		summary = domain.ReclaimSummary{
			CustomerID:      customer.ID,
			ReclaimedAssets: reclaimed,
			Count:           len(reclaimed),
		}
		return nil
	})
	return summary, err
}

func (s *Service) BulkReclaim(ctx context.Context, customerIDs []snowflake.ID) []domain.BulkReclaimItem {
	items := make([]domain.BulkReclaimItem, 0, len(customerIDs))
	for _, id := range customerIDs {
		summary, err := s.ReclaimCustomerAssets(ctx, id)
		item := domain.BulkReclaimItem{CustomerID: id}
		if err != nil {
			item.Error = err.Error()
		} else {
			result := summary
			item.Summary = &result
		}
		items = append(items, item)
	}
	return items
}

func (s *Service) RetireAsset(ctx context.Context, assetID snowflake.ID, reason string) (assetdomain.Asset, error) {
	var retired assetdomain.Asset
	err := s.transact(ctx, "retire_asset", func(tx *gorm.DB) error {
		asset, err := s.assetRepo.FindByIDForUpdate(ctx, tx, assetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return assetdomain.ErrAssetNotFound
		}
		if err := asset.Retire(strings.TrimSpace(reason)); err != nil {
			return err
		}
		if err := s.assetRepo.Update(ctx, tx, asset); err != nil {
			return err
		}
		_ = s.audit.Record(ctx, tx, "", "lifecycle.retire_asset", "asset", asset.ID.String(), map[string]any{
			"reason": asset.RetireReason,
		})
		retired = *asset
		return nil
	})
	return retired, err
}

func (s *Service) DeactivateCustomer(ctx context.Context, customerID snowflake.ID) (domain.DeactivateResult, error) {
	var result domain.DeactivateResult
	err := s.transact(ctx, "deactivate_customer", func(tx *gorm.DB) error {
		reclaimed, customer, err := s.reclaimLocked(ctx, tx, customerID, true)
		if err != nil {
			return err
		}
		_ = s.audit.Record(ctx, tx, "", "lifecycle.deactivate", "customer", customer.ID.String(), map[string]any{
			"reclaimed": len(reclaimed),
		})
		result = domain.DeactivateResult{
			Customer:        *customer,
			ReclaimedAssets: reclaimed,
		}
		return nil
	})
	return result, err
}

// ActivateCustomer returns an Inactive customer to Pending. The retained port
// may have been handed out while the customer was Inactive, so availability
// is re-checked under the splitter lock before the transition commits.
func (s *Service) ActivateCustomer(ctx context.Context, customerID snowflake.ID) (customerdomain.Customer, error) {
	var reactivated customerdomain.Customer
	err := s.transact(ctx, "activate_customer", func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return customerdomain.ErrNotFound
		}
		if err := customer.Reactivate(); err != nil {
			return err
		}

		if customer.SplitterID != nil && customer.AssignedPort != nil {
			capacity, err := s.ports.LockForAllocation(ctx, tx, *customer.SplitterID)
			if err != nil {
				return err
			}
			if capacity == nil {
				return domain.ErrSplitterNotFound
			}
			free, err := s.ports.PortFree(ctx, tx, *customer.SplitterID, *customer.AssignedPort)
			if err != nil {
				return err
			}
			if !free {
				s.metrics.RecordPortConflict()
				return domain.ErrPortUnavailable
			}
		}

		customer.UpdatedAt = s.clock.Now()
		if err := s.customerRepo.Update(ctx, tx, customer); err != nil {
			if db.IsDuplicateKeyErr(err) {
				s.metrics.RecordPortConflict()
				return domain.ErrPortUnavailable
			}
			return err
		}

		if customer.SplitterID != nil {
			if _, err := s.ports.Recompute(ctx, tx, *customer.SplitterID); err != nil {
				return err
			}
		}

		_ = s.audit.Record(ctx, tx, "", "lifecycle.activate", "customer", customer.ID.String(), nil)

		reactivated = *customer
		return nil
	})
	return reactivated, err
}

func (s *Service) PurgeCustomer(ctx context.Context, customerID snowflake.ID) (domain.PurgeSummary, error) {
	var summary domain.PurgeSummary
	err := s.transact(ctx, "purge_customer", func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return customerdomain.ErrNotFound
		}
		splitterID := customer.SplitterID

		deletedLines, err := s.topologyRepo.DeleteDropLinesForCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}

		assets, err := s.assetRepo.FindByCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}
		reclaimed := make([]snowflake.ID, 0, len(assets))
		for i := range assets {
			if err := assets[i].Reclaim(); err != nil {
				return err
			}
			if err := s.assetRepo.Update(ctx, tx, &assets[i]); err != nil {
				return err
			}
			reclaimed = append(reclaimed, assets[i].ID)
		}

		deletedRecords, err := s.ledger.DeleteForCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}
		deletedTasks, err := s.deploymentRepo.DeleteTasksForCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}

		if err := s.customerRepo.Delete(ctx, tx, customerID); err != nil {
			return err
		}

		if splitterID != nil {
			if _, err := s.ports.Recompute(ctx, tx, *splitterID); err != nil {
				return err
			}
		}

		_ = s.audit.Record(ctx, tx, "", "lifecycle.purge", "customer", customerID.String(), map[string]any{
			"reclaimed_assets": len(reclaimed),
			"deleted_records":  deletedRecords,
			"deleted_tasks":    deletedTasks,
			"deleted_lines":    deletedLines,
		})

		summary = domain.PurgeSummary{
			CustomerID:        customerID,
			ReclaimedAssets:   reclaimed,
			DeletedRecords:    deletedRecords,
			DeletedTasks:      deletedTasks,
			DeletedFiberLines: deletedLines,
		}
		return nil
	})
	return summary, err
}

// transact runs fn in one transaction and records the operation outcome.
func (s *Service) transact(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	s.metrics.RecordLifecycleOp(operation, err)
	if err != nil {
		s.log.Warn("lifecycle operation failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
	return err
}

type assetSlot struct {
	id       *snowflake.ID
	expected assetdomain.AssetType
	asset    *assetdomain.Asset
}

// lockAssetSlots fetches and locks every requested asset and validates all of
// them before any is mutated, so a failing slot leaves the others untouched.
func (s *Service) lockAssetSlots(ctx context.Context, tx *gorm.DB, slots []assetSlot) ([]assetSlot, error) {
	locked := make([]assetSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.id == nil {
			continue
		}
		asset, err := s.assetRepo.FindByIDForUpdate(ctx, tx, *slot.id)
		if err != nil {
			return nil, err
		}
		if asset == nil {
			return nil, assetdomain.ErrAssetNotFound
		}
		if asset.Status == assetdomain.AssetStatusRetired {
			return nil, assetdomain.ErrAssetRetired
		}
		if asset.Status != assetdomain.AssetStatusAvailable {
			return nil, assetdomain.ErrAssetNotAvailable
		}
		if asset.AssetType != slot.expected {
			return nil, assetdomain.ErrAssetTypeMismatch
		}
		slot.asset = asset
		locked = append(locked, slot)
	}
	return locked, nil
}

func (s *Service) assignSlots(ctx context.Context, tx *gorm.DB, slots []assetSlot, customerID snowflake.ID, now time.Time) ([]assetdomain.Asset, error) {
	assigned := make([]assetdomain.Asset, 0, len(slots))
	for _, slot := range slots {
		if err := slot.asset.Assign(customerID, slot.expected, now); err != nil {
			return nil, err
		}
		if err := s.assetRepo.Update(ctx, tx, slot.asset); err != nil {
			return nil, err
		}
		if _, err := s.ledger.Append(ctx, tx, customerID, slot.asset.ID, now); err != nil {
			return nil, err
		}
		assigned = append(assigned, *slot.asset)
	}
	return assigned, nil
}

// reclaimLocked locks the customer, reclaims every bound asset, applies the
// Inactive transition and recomputes the splitter counter. With strict set an
// already-Inactive customer is an error; otherwise the call is idempotent.
func (s *Service) reclaimLocked(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, strict bool) ([]snowflake.ID, *customerdomain.Customer, error) {
	customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, customerdomain.ErrNotFound
	}

	if err := customer.Deactivate(); err != nil {
		if strict || err != customerdomain.ErrAlreadyInactive {
			return nil, nil, err
		}
	}

	assets, err := s.assetRepo.FindByCustomer(ctx, tx, customerID)
	if err != nil {
		return nil, nil, err
	}
	reclaimed := make([]snowflake.ID, 0, len(assets))
	for i := range assets {
		if err := assets[i].Reclaim(); err != nil {
			return nil, nil, err
		}
		if err := s.assetRepo.Update(ctx, tx, &assets[i]); err != nil {
			return nil, nil, err
		}
		reclaimed = append(reclaimed, assets[i].ID)
	}

	customer.UpdatedAt = s.clock.Now()
	if err := s.customerRepo.Update(ctx, tx, customer); err != nil {
		return nil, nil, err
	}

	if customer.SplitterID != nil {
		if _, err := s.ports.Recompute(ctx, tx, *customer.SplitterID); err != nil {
			return nil, nil, err
		}
	}
	return reclaimed, customer, nil
}

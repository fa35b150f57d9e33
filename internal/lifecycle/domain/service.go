package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
)

// OnboardRequest carries the customer draft plus the splitter/port target and
// optional equipment for a single atomic onboarding.
type OnboardRequest struct {
	Customer          customerdomain.CreateCustomerRequest
	SplitterID        snowflake.ID
	Port              int
	ONTAssetID        *snowflake.ID
	RouterAssetID     *snowflake.ID
	FiberLengthMeters *float64
}

type OnboardResult struct {
	Customer       customerdomain.Customer `json:"customer"`
	AssignedAssets []assetdomain.Asset     `json:"assigned_assets"`
	UsedPorts      int                     `json:"used_ports"`
}

type ReassignResult struct {
	Asset         assetdomain.Asset `json:"asset"`
	OldCustomerID *snowflake.ID     `json:"old_customer_id,omitempty"`
	NewCustomerID snowflake.ID      `json:"new_customer_id"`
}

type ReplaceResult struct {
	OldAsset   assetdomain.Asset `json:"old_asset"`
	NewAsset   assetdomain.Asset `json:"new_asset"`
	CustomerID snowflake.ID      `json:"customer_id"`
}

type ReclaimSummary struct {
	CustomerID      snowflake.ID   `json:"customer_id"`
	ReclaimedAssets []snowflake.ID `json:"reclaimed_assets"`
	Count           int            `json:"count"`
}

// BulkReclaimItem is one entry in a bulk reclaim response. Exactly one of
// Summary and Error is set.
type BulkReclaimItem struct {
	CustomerID snowflake.ID    `json:"customer_id"`
	Summary    *ReclaimSummary `json:"summary,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type PurgeSummary struct {
	CustomerID        snowflake.ID   `json:"customer_id"`
	ReclaimedAssets   []snowflake.ID `json:"reclaimed_assets"`
	DeletedRecords    int64          `json:"deleted_assignment_records"`
	DeletedTasks      int64          `json:"deleted_deployment_tasks"`
	DeletedFiberLines int64          `json:"deleted_fiber_lines"`
}

type DeactivateResult struct {
	Customer        customerdomain.Customer `json:"customer"`
	ReclaimedAssets []snowflake.ID          `json:"reclaimed_assets"`
}

// Service is the transaction orchestrator. Every operation except
// BulkReclaim's outer loop runs as a single transaction: all preconditions
// are re-checked under row locks and the whole unit commits or rolls back
// together.
type Service interface {
	Onboard(ctx context.Context, req OnboardRequest) (OnboardResult, error)
	AssignAssets(ctx context.Context, customerID, ontAssetID, routerAssetID snowflake.ID) (OnboardResult, error)
	ReassignAsset(ctx context.Context, assetID, newCustomerID snowflake.ID) (ReassignResult, error)
	ReplaceFaultyAsset(ctx context.Context, oldAssetID, newAssetID snowflake.ID) (ReplaceResult, error)
	ReclaimCustomerAssets(ctx context.Context, customerID snowflake.ID) (ReclaimSummary, error)
	BulkReclaim(ctx context.Context, customerIDs []snowflake.ID) []BulkReclaimItem
	RetireAsset(ctx context.Context, assetID snowflake.ID, reason string) (assetdomain.Asset, error)
	DeactivateCustomer(ctx context.Context, customerID snowflake.ID) (DeactivateResult, error)
	ActivateCustomer(ctx context.Context, customerID snowflake.ID) (customerdomain.Customer, error)
	PurgeCustomer(ctx context.Context, customerID snowflake.ID) (PurgeSummary, error)
}

var (
	ErrSplitterNotFound = errors.New("splitter_not_found")
	ErrPortOutOfRange   = errors.New("port_out_of_range")
	ErrPortUnavailable  = errors.New("port_unavailable")
	ErrSameCustomer     = errors.New("asset_already_with_customer")
	ErrCustomerInactive = errors.New("customer_inactive")
)

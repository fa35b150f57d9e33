package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateAssetRequest struct {
	AssetType    AssetType
	Model        string
	SerialNumber string
	Location     string
}

// UpdateAssetRequest enumerates exactly the mutable catalog fields. Status and
// the customer binding change only through lifecycle operations.
type UpdateAssetRequest struct {
	Model    *string
	Location *string
}

type ListAssetFilter struct {
	AssetType AssetType
	Status    AssetStatus
	Location  string
	Limit     int
	Offset    int
}

// LifecycleDetails is an asset plus its full assignment history,
// most recent first.
type LifecycleDetails struct {
	Asset             Asset              `json:"asset"`
	TotalAssignments  int                `json:"total_assignments"`
	AssignmentHistory []AssignmentPeriod `json:"assignment_history"`
	CurrentAssignment *AssignmentPeriod  `json:"current_assignment,omitempty"`
}

type AssignmentPeriod struct {
	CustomerID   snowflake.ID `json:"customer_id"`
	CustomerName string       `json:"customer_name"`
	AssignedOn   time.Time    `json:"assigned_on"`
	DurationDays int          `json:"duration_days"`
}

// UtilizationStat aggregates asset counts per type and status.
type UtilizationStat struct {
	Available       int     `json:"Available"`
	Assigned        int     `json:"Assigned"`
	Faulty          int     `json:"Faulty"`
	Retired         int     `json:"Retired"`
	Total           int     `json:"total"`
	UtilizationRate float64 `json:"utilization_rate"`
}

type Service interface {
	Create(ctx context.Context, req CreateAssetRequest) (Asset, error)
	GetByID(ctx context.Context, id snowflake.ID) (Asset, error)
	GetBySerial(ctx context.Context, serial string) (Asset, error)
	List(ctx context.Context, filter ListAssetFilter) ([]Asset, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateAssetRequest) (Asset, error)
	Delete(ctx context.Context, id snowflake.ID) error

	LifecycleDetails(ctx context.Context, id snowflake.ID) (LifecycleDetails, error)
	UtilizationStats(ctx context.Context) (map[AssetType]UtilizationStat, error)
	DueForMaintenance(ctx context.Context, threshold time.Duration) ([]Asset, error)
}

var (
	ErrInvalidAssetType  = errors.New("invalid_asset_type")
	ErrInvalidSerial     = errors.New("invalid_serial_number")
	ErrSerialTaken       = errors.New("serial_number_taken")
	ErrAssetNotFound     = errors.New("asset_not_found")
	ErrAssetNotAvailable = errors.New("asset_not_available")
	ErrAssetNotAssigned  = errors.New("asset_not_assigned")
	ErrAssetTypeMismatch = errors.New("asset_type_mismatch")
	ErrAssetRetired      = errors.New("asset_retired")
	ErrAssetInUse        = errors.New("asset_in_use")
)

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AssetType string

const (
	AssetTypeONT       AssetType = "ONT"
	AssetTypeRouter    AssetType = "Router"
	AssetTypeSplitter  AssetType = "Splitter"
	AssetTypeFDH       AssetType = "FDH"
	AssetTypeSwitch    AssetType = "Switch"
	AssetTypeCPE       AssetType = "CPE"
	AssetTypeFiberRoll AssetType = "FiberRoll"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeONT, AssetTypeRouter, AssetTypeSplitter, AssetTypeFDH,
		AssetTypeSwitch, AssetTypeCPE, AssetTypeFiberRoll:
		return true
	}
	return false
}

type AssetStatus string

const (
	AssetStatusAvailable AssetStatus = "Available"
	AssetStatusAssigned  AssetStatus = "Assigned"
	AssetStatusFaulty    AssetStatus = "Faulty"
	AssetStatusRetired   AssetStatus = "Retired"
)

// Asset is a tracked physical device. Status and the customer binding move
// together: Assigned iff CustomerID is set. Retired is terminal.
type Asset struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	AssetType    AssetType     `gorm:"not null" json:"asset_type"`
	Model        string        `json:"model,omitempty"`
	SerialNumber string        `gorm:"not null;uniqueIndex" json:"serial_number"`
	Status       AssetStatus   `gorm:"not null;default:'Available'" json:"status"`
	Location     string        `json:"location,omitempty"`
	CustomerID   *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	AssignedAt   *time.Time    `json:"assigned_at,omitempty"`
	RetireReason string        `json:"retire_reason,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Asset) TableName() string { return "assets" }

// Assign binds an Available asset to a customer. The expected type guards
// role slots: a Router cannot fill an ONT slot.
func (a *Asset) Assign(customerID snowflake.ID, expected AssetType, at time.Time) error {
	if a.Status == AssetStatusRetired {
		return ErrAssetRetired
	}
	if a.Status != AssetStatusAvailable {
		return ErrAssetNotAvailable
	}
	if expected != "" && a.AssetType != expected {
		return ErrAssetTypeMismatch
	}
	a.Status = AssetStatusAssigned
	a.CustomerID = &customerID
	a.AssignedAt = &at
	return nil
}

// Reclaim returns an Assigned asset to the Available pool.
func (a *Asset) Reclaim() error {
	if a.Status == AssetStatusRetired {
		return ErrAssetRetired
	}
	if a.Status != AssetStatusAssigned {
		return ErrAssetNotAssigned
	}
	a.Status = AssetStatusAvailable
	a.CustomerID = nil
	a.AssignedAt = nil
	return nil
}

// MarkFaulty detaches the asset from its customer. The caller is responsible
// for assigning a replacement.
func (a *Asset) MarkFaulty() error {
	if a.Status == AssetStatusRetired {
		return ErrAssetRetired
	}
	if a.Status != AssetStatusAssigned {
		return ErrAssetNotAssigned
	}
	a.Status = AssetStatusFaulty
	a.CustomerID = nil
	a.AssignedAt = nil
	return nil
}

// Retire is terminal. The reason is kept for audit only.
func (a *Asset) Retire(reason string) error {
	if a.Status == AssetStatusRetired {
		return ErrAssetRetired
	}
	a.Status = AssetStatusRetired
	a.CustomerID = nil
	a.AssignedAt = nil
	a.RetireReason = reason
	return nil
}

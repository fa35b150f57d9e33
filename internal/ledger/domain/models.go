package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// AssignmentRecord is one append-only entry in the customer↔asset binding
// ledger. Entries are never updated; they are deleted only when a customer is
// purged outright.
type AssignmentRecord struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	AssetID    snowflake.ID `gorm:"not null;index" json:"asset_id"`
	AssignedOn time.Time    `gorm:"not null" json:"assigned_on"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AssignmentRecord) TableName() string { return "assignment_records" }

type Service interface {
	// Append writes one binding record inside the caller's transaction.
	Append(ctx context.Context, tx *gorm.DB, customerID, assetID snowflake.ID, assignedOn time.Time) (AssignmentRecord, error)
	HistoryByAsset(ctx context.Context, assetID snowflake.ID) ([]AssignmentRecord, error)
	HistoryByCustomer(ctx context.Context, customerID snowflake.ID) ([]AssignmentRecord, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	// DeleteForCustomer removes a customer's ledger trail. Purge path only.
	DeleteForCustomer(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) (int64, error)
}

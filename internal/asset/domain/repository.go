package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, asset *Asset) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Asset, error)
	// FindByIDForUpdate locks the asset row for the duration of the
	// surrounding transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Asset, error)
	FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*Asset, error)
	FindByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Asset, error)
	List(ctx context.Context, db *gorm.DB, filter ListAssetFilter) ([]Asset, error)
	Update(ctx context.Context, db *gorm.DB, asset *Asset) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

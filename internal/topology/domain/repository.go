package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertHeadend(ctx context.Context, db *gorm.DB, headend *Headend) error
	FindHeadendByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Headend, error)
	ListHeadends(ctx context.Context, db *gorm.DB) ([]Headend, error)

	InsertFDH(ctx context.Context, db *gorm.DB, fdh *FDH) error
	FindFDHByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FDH, error)
	ListFDHs(ctx context.Context, db *gorm.DB) ([]FDH, error)

	InsertSplitter(ctx context.Context, db *gorm.DB, splitter *Splitter) error
	FindSplitterByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Splitter, error)
	ListSplitters(ctx context.Context, db *gorm.DB, fdhID *snowflake.ID) ([]Splitter, error)

	InsertDropLine(ctx context.Context, db *gorm.DB, line *FiberDropLine) error
	DeleteDropLinesForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
}

package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/topology/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertHeadend(ctx context.Context, db *gorm.DB, headend *domain.Headend) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO headends (id, name, location, region, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		headend.ID,
		headend.Name,
		headend.Location,
		headend.Region,
		headend.CreatedAt,
	).Error
}

func (r *repo) FindHeadendByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Headend, error) {
	var headend domain.Headend
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, location, region, created_at FROM headends WHERE id = ?`,
		id,
	).Scan(&headend).Error
	if err != nil {
		return nil, err
	}
	if headend.ID == 0 {
		return nil, nil
	}
	return &headend, nil
}

func (r *repo) ListHeadends(ctx context.Context, db *gorm.DB) ([]domain.Headend, error) {
	var headends []domain.Headend
	err := db.WithContext(ctx).
		Model(&domain.Headend{}).
		Order("created_at asc, id asc").
		Find(&headends).Error
	if err != nil {
		return nil, err
	}
	return headends, nil
}

func (r *repo) InsertFDH(ctx context.Context, db *gorm.DB, fdh *domain.FDH) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fdhs (id, headend_id, name, location, region, max_ports, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fdh.ID,
		fdh.HeadendID,
		fdh.Name,
		fdh.Location,
		fdh.Region,
		fdh.MaxPorts,
		fdh.CreatedAt,
	).Error
}

func (r *repo) FindFDHByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.FDH, error) {
	var fdh domain.FDH
	err := db.WithContext(ctx).Raw(
		`SELECT id, headend_id, name, location, region, max_ports, created_at FROM fdhs WHERE id = ?`,
		id,
	).Scan(&fdh).Error
	if err != nil {
		return nil, err
	}
	if fdh.ID == 0 {
		return nil, nil
	}
	return &fdh, nil
}

func (r *repo) ListFDHs(ctx context.Context, db *gorm.DB) ([]domain.FDH, error) {
	var fdhs []domain.FDH
	err := db.WithContext(ctx).
		Model(&domain.FDH{}).
		Order("created_at asc, id asc").
		Find(&fdhs).Error
	if err != nil {
		return nil, err
	}
	return fdhs, nil
}

func (r *repo) InsertSplitter(ctx context.Context, db *gorm.DB, splitter *domain.Splitter) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO splitters (id, fdh_id, model, port_capacity, used_ports, location, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		splitter.ID,
		splitter.FDHID,
		splitter.Model,
		splitter.PortCapacity,
		splitter.UsedPorts,
		splitter.Location,
		splitter.CreatedAt,
	).Error
}

func (r *repo) FindSplitterByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Splitter, error) {
	var splitter domain.Splitter
	err := db.WithContext(ctx).Raw(
		`SELECT id, fdh_id, model, port_capacity, used_ports, location, created_at
		 FROM splitters WHERE id = ?`,
		id,
	).Scan(&splitter).Error
	if err != nil {
		return nil, err
	}
	if splitter.ID == 0 {
		return nil, nil
	}
	return &splitter, nil
}

func (r *repo) ListSplitters(ctx context.Context, db *gorm.DB, fdhID *snowflake.ID) ([]domain.Splitter, error) {
	stmt := db.WithContext(ctx).Model(&domain.Splitter{})
	if fdhID != nil {
		stmt = stmt.Where("fdh_id = ?", *fdhID)
	}
	var splitters []domain.Splitter
	err := stmt.Order("created_at asc, id asc").Find(&splitters).Error
	if err != nil {
		return nil, err
	}
	return splitters, nil
}

func (r *repo) InsertDropLine(ctx context.Context, db *gorm.DB, line *domain.FiberDropLine) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fiber_drop_lines (id, splitter_id, customer_id, length_meters, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		line.ID,
		line.SplitterID,
		line.CustomerID,
		line.LengthMeters,
		line.Status,
		line.CreatedAt,
	).Error
}

func (r *repo) DeleteDropLinesForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM fiber_drop_lines WHERE customer_id = ?`,
		customerID,
	)
	return result.RowsAffected, result.Error
}

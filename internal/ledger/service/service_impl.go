package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		clock: p.Clock,
		genID: p.GenID,
	}
}

func (s *Service) Append(ctx context.Context, tx *gorm.DB, customerID, assetID snowflake.ID, assignedOn time.Time) (domain.AssignmentRecord, error) {
	if tx == nil {
		tx = s.db
	}
	if assignedOn.IsZero() {
		assignedOn = s.clock.Now()
	}

	record := domain.AssignmentRecord{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		AssetID:    assetID,
		AssignedOn: assignedOn.UTC(),
		CreatedAt:  s.clock.Now(),
	}
	err := tx.WithContext(ctx).Exec(
		`INSERT INTO assignment_records (id, customer_id, asset_id, assigned_on, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.CustomerID,
		record.AssetID,
		record.AssignedOn,
		record.CreatedAt,
	).Error
	if err != nil {
		return domain.AssignmentRecord{}, err
	}
	return record, nil
}

func (s *Service) HistoryByAsset(ctx context.Context, assetID snowflake.ID) ([]domain.AssignmentRecord, error) {
	var records []domain.AssignmentRecord
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, asset_id, assigned_on, created_at
		 FROM assignment_records
		 WHERE asset_id = ?
		 ORDER BY assigned_on DESC, id DESC`,
		assetID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) HistoryByCustomer(ctx context.Context, customerID snowflake.ID) ([]domain.AssignmentRecord, error) {
	var records []domain.AssignmentRecord
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, asset_id, assigned_on, created_at
		 FROM assignment_records
		 WHERE customer_id = ?
		 ORDER BY assigned_on DESC, id DESC`,
		customerID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(id) FROM assignment_records WHERE assigned_on >= ?`,
		since.UTC(),
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) DeleteForCustomer(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) (int64, error) {
	if tx == nil {
		tx = s.db
	}
	result := tx.WithContext(ctx).Exec(
		`DELETE FROM assignment_records WHERE customer_id = ?`,
		customerID,
	)
	return result.RowsAffected, result.Error
}

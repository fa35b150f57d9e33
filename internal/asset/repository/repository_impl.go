package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/asset/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const assetColumns = `id, asset_type, model, serial_number, status, location, customer_id, assigned_at, retire_reason, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, asset *domain.Asset) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO assets (id, asset_type, model, serial_number, status, location, customer_id, assigned_at, retire_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID,
		asset.AssetType,
		asset.Model,
		asset.SerialNumber,
		asset.Status,
		asset.Location,
		asset.CustomerID,
		asset.AssignedAt,
		asset.RetireReason,
		asset.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Asset, error) {
	var asset domain.Asset
	err := db.WithContext(ctx).Raw(
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`,
		id,
	).Scan(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == 0 {
		return nil, nil
	}
	return &asset, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Asset, error) {
	var asset domain.Asset
	err := db.WithContext(ctx).Raw(
		`SELECT `+assetColumns+` FROM assets WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == 0 {
		return nil, nil
	}
	return &asset, nil
}

func (r *repo) FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*domain.Asset, error) {
	var asset domain.Asset
	err := db.WithContext(ctx).Raw(
		`SELECT `+assetColumns+` FROM assets WHERE serial_number = ?`,
		serial,
	).Scan(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == 0 {
		return nil, nil
	}
	return &asset, nil
}

func (r *repo) FindByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := db.WithContext(ctx).Raw(
		`SELECT `+assetColumns+` FROM assets WHERE customer_id = ? ORDER BY id ASC`,
		customerID,
	).Scan(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListAssetFilter) ([]domain.Asset, error) {
	stmt := db.WithContext(ctx).Model(&domain.Asset{})
	if filter.AssetType != "" {
		stmt = stmt.Where("asset_type = ?", filter.AssetType)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		stmt = stmt.Where("location LIKE ?", "%"+filter.Location+"%")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var assets []domain.Asset
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(filter.Offset).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, asset *domain.Asset) error {
	return db.WithContext(ctx).Exec(
		`UPDATE assets
		 SET model = ?, status = ?, location = ?, customer_id = ?, assigned_at = ?, retire_reason = ?
		 WHERE id = ?`,
		asset.Model,
		asset.Status,
		asset.Location,
		asset.CustomerID,
		asset.AssignedAt,
		asset.RetireReason,
		asset.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM assets WHERE id = ?`, id).Error
}

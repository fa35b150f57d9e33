package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/asset/domain"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/pkg/db"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("asset.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAssetRequest) (domain.Asset, error) {
	if !req.AssetType.Valid() {
		return domain.Asset{}, domain.ErrInvalidAssetType
	}
	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return domain.Asset{}, domain.ErrInvalidSerial
	}

	asset := domain.Asset{
		ID:           s.genID.Generate(),
		AssetType:    req.AssetType,
		Model:        strings.TrimSpace(req.Model),
		SerialNumber: serial,
		Status:       domain.AssetStatusAvailable,
		Location:     strings.TrimSpace(req.Location),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &asset); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Asset{}, domain.ErrSerialTaken
		}
		return domain.Asset{}, err
	}
	return asset, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Asset, error) {
	asset, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Asset{}, err
	}
	if asset == nil {
		return domain.Asset{}, domain.ErrAssetNotFound
	}
	return *asset, nil
}

func (s *Service) GetBySerial(ctx context.Context, serial string) (domain.Asset, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return domain.Asset{}, domain.ErrInvalidSerial
	}
	asset, err := s.repo.FindBySerial(ctx, s.db, serial)
	if err != nil {
		return domain.Asset{}, err
	}
	if asset == nil {
		return domain.Asset{}, domain.ErrAssetNotFound
	}
	return *asset, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListAssetFilter) ([]domain.Asset, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateAssetRequest) (domain.Asset, error) {
	asset, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Asset{}, err
	}
	if asset == nil {
		return domain.Asset{}, domain.ErrAssetNotFound
	}

	if req.Model != nil {
		asset.Model = strings.TrimSpace(*req.Model)
	}
	if req.Location != nil {
		asset.Location = strings.TrimSpace(*req.Location)
	}
	if err := s.repo.Update(ctx, s.db, asset); err != nil {
		return domain.Asset{}, err
	}
	return *asset, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	asset, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if asset == nil {
		return domain.ErrAssetNotFound
	}
	if asset.Status == domain.AssetStatusAssigned {
		return domain.ErrAssetInUse
	}
	return s.repo.Delete(ctx, s.db, id)
}

type historyRow struct {
	CustomerID   snowflake.ID
	CustomerName string
	AssignedOn   time.Time
}

func (s *Service) LifecycleDetails(ctx context.Context, id snowflake.ID) (domain.LifecycleDetails, error) {
	asset, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.LifecycleDetails{}, err
	}
	if asset == nil {
		return domain.LifecycleDetails{}, domain.ErrAssetNotFound
	}

	var rows []historyRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT ar.customer_id, COALESCE(c.name, '') AS customer_name, ar.assigned_on
		 FROM assignment_records ar
		 LEFT JOIN customers c ON c.id = ar.customer_id
		 WHERE ar.asset_id = ?
		 ORDER BY ar.assigned_on DESC, ar.id DESC`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return domain.LifecycleDetails{}, err
	}

	now := s.clock.Now()
	history := make([]domain.AssignmentPeriod, 0, len(rows))
	for _, row := range rows {
		name := row.CustomerName
		if name == "" {
			name = "Unknown"
		}
		history = append(history, domain.AssignmentPeriod{
			CustomerID:   row.CustomerID,
			CustomerName: name,
			AssignedOn:   row.AssignedOn,
			DurationDays: int(now.Sub(row.AssignedOn).Hours() / 24),
		})
	}

	details := domain.LifecycleDetails{
		Asset:             *asset,
		TotalAssignments:  len(history),
		AssignmentHistory: history,
	}
	if len(history) > 0 && asset.CustomerID != nil {
		details.CurrentAssignment = &history[0]
	}
	return details, nil
}

type utilizationRow struct {
	AssetType domain.AssetType
	Status    domain.AssetStatus
	Count     int
}

func (s *Service) UtilizationStats(ctx context.Context) (map[domain.AssetType]domain.UtilizationStat, error) {
	var rows []utilizationRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT asset_type, status, COUNT(id) AS count
		 FROM assets
		 GROUP BY asset_type, status`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[domain.AssetType]domain.UtilizationStat)
	for _, row := range rows {
		stat := stats[row.AssetType]
		switch row.Status {
		case domain.AssetStatusAvailable:
			stat.Available += row.Count
		case domain.AssetStatusAssigned:
			stat.Assigned += row.Count
		case domain.AssetStatusFaulty:
			stat.Faulty += row.Count
		case domain.AssetStatusRetired:
			stat.Retired += row.Count
		}
		stat.Total += row.Count
		stats[row.AssetType] = stat
	}
	for assetType, stat := range stats {
		if stat.Total > 0 {
			stat.UtilizationRate = float64(stat.Assigned) / float64(stat.Total) * 100
		}
		stats[assetType] = stat
	}
	return stats, nil
}

func (s *Service) DueForMaintenance(ctx context.Context, threshold time.Duration) ([]domain.Asset, error) {
	if threshold <= 0 {
		threshold = 365 * 24 * time.Hour
	}
	cutoff := s.clock.Now().Add(-threshold)

	var assets []domain.Asset
	err := s.db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("status = ?", domain.AssetStatusAssigned).
		Where("assigned_at < ?", cutoff).
		Order("assigned_at asc").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/internal/topology/domain"
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
		log:   p.Log.Named("topology.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateHeadend(ctx context.Context, req domain.CreateHeadendRequest) (domain.Headend, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Headend{}, domain.ErrInvalidName
	}

	headend := domain.Headend{
		ID:        s.genID.Generate(),
		Name:      name,
		Location:  strings.TrimSpace(req.Location),
		Region:    strings.TrimSpace(req.Region),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertHeadend(ctx, s.db, &headend); err != nil {
		return domain.Headend{}, err
	}
	return headend, nil
}

func (s *Service) ListHeadends(ctx context.Context) ([]domain.Headend, error) {
	return s.repo.ListHeadends(ctx, s.db)
}

func (s *Service) CreateFDH(ctx context.Context, req domain.CreateFDHRequest) (domain.FDH, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.FDH{}, domain.ErrInvalidName
	}
	if req.HeadendID != nil {
		headend, err := s.repo.FindHeadendByID(ctx, s.db, *req.HeadendID)
		if err != nil {
			return domain.FDH{}, err
		}
		if headend == nil {
			return domain.FDH{}, domain.ErrHeadendNotFound
		}
	}

	maxPorts := req.MaxPorts
	if maxPorts <= 0 {
		maxPorts = 8
	}

	fdh := domain.FDH{
		ID:        s.genID.Generate(),
		HeadendID: req.HeadendID,
		Name:      name,
		Location:  strings.TrimSpace(req.Location),
		Region:    strings.TrimSpace(req.Region),
		MaxPorts:  maxPorts,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertFDH(ctx, s.db, &fdh); err != nil {
		return domain.FDH{}, err
	}
	return fdh, nil
}

func (s *Service) ListFDHs(ctx context.Context) ([]domain.FDH, error) {
	return s.repo.ListFDHs(ctx, s.db)
}

func (s *Service) CreateSplitter(ctx context.Context, req domain.CreateSplitterRequest) (domain.Splitter, error) {
	if req.PortCapacity <= 0 {
		return domain.Splitter{}, domain.ErrInvalidPortCapacity
	}
	fdh, err := s.repo.FindFDHByID(ctx, s.db, req.FDHID)
	if err != nil {
		return domain.Splitter{}, err
	}
	if fdh == nil {
		return domain.Splitter{}, domain.ErrFDHNotFound
	}

	splitter := domain.Splitter{
		ID:           s.genID.Generate(),
		FDHID:        req.FDHID,
		Model:        strings.TrimSpace(req.Model),
		PortCapacity: req.PortCapacity,
		Location:     strings.TrimSpace(req.Location),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.InsertSplitter(ctx, s.db, &splitter); err != nil {
		return domain.Splitter{}, err
	}
	return splitter, nil
}

func (s *Service) ListSplitters(ctx context.Context, fdhID *snowflake.ID) ([]domain.Splitter, error) {
	return s.repo.ListSplitters(ctx, s.db, fdhID)
}

func (s *Service) GetSplitter(ctx context.Context, id snowflake.ID) (domain.Splitter, error) {
	splitter, err := s.repo.FindSplitterByID(ctx, s.db, id)
	if err != nil {
		return domain.Splitter{}, err
	}
	if splitter == nil {
		return domain.Splitter{}, domain.ErrSplitterNotFound
	}
	return *splitter, nil
}

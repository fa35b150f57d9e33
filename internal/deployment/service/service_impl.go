package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	"github.com/opennoc/fiberplant/internal/clock"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	"github.com/opennoc/fiberplant/internal/deployment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	Audit        auditdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
	audit        auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("deployment.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		audit:        p.Audit,
	}
}

func (s *Service) CreateTechnician(ctx context.Context, req domain.CreateTechnicianRequest) (domain.Technician, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Technician{}, domain.ErrInvalidTechnician
	}
	technician := domain.Technician{
		ID:        s.genID.Generate(),
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		Region:    strings.TrimSpace(req.Region),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertTechnician(ctx, s.db, &technician); err != nil {
		return domain.Technician{}, err
	}
	return technician, nil
}

func (s *Service) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	return s.repo.ListTechnicians(ctx, s.db)
}

func (s *Service) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (domain.DeploymentTask, error) {
	customer, err := s.customerRepo.FindByID(ctx, s.db, req.CustomerID)
	if err != nil {
		return domain.DeploymentTask{}, err
	}
	if customer == nil {
		return domain.DeploymentTask{}, customerdomain.ErrNotFound
	}

	if req.TechnicianID != nil {
		technician, err := s.repo.FindTechnicianByID(ctx, s.db, *req.TechnicianID)
		if err != nil {
			return domain.DeploymentTask{}, err
		}
		if technician == nil {
			return domain.DeploymentTask{}, domain.ErrTechnicianNotFound
		}
	}

	now := s.clock.Now()
	task := domain.DeploymentTask{
		ID:           s.genID.Generate(),
		CustomerID:   req.CustomerID,
		TechnicianID: req.TechnicianID,
		Status:       domain.TaskStatusScheduled,
		ScheduledFor: req.ScheduledFor,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertTask(ctx, s.db, &task); err != nil {
		return domain.DeploymentTask{}, err
	}
	return task, nil
}

func (s *Service) GetTask(ctx context.Context, id snowflake.ID) (domain.DeploymentTask, error) {
	task, err := s.repo.FindTaskByID(ctx, s.db, id)
	if err != nil {
		return domain.DeploymentTask{}, err
	}
	if task == nil {
		return domain.DeploymentTask{}, domain.ErrTaskNotFound
	}
	return *task, nil
}

func (s *Service) ListTasks(ctx context.Context, filter domain.ListTaskFilter) ([]domain.DeploymentTask, error) {
	return s.repo.ListTasks(ctx, s.db, filter)
}

// UpdateTaskStatus moves a task through its status flow. When the target
// status is Completed the task's customer goes Pending to Active in the same
// transaction; any other target leaves the customer untouched.
func (s *Service) UpdateTaskStatus(ctx context.Context, id snowflake.ID, status domain.TaskStatus) (domain.DeploymentTask, error) {
	var updated domain.DeploymentTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.repo.FindTaskByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.ErrTaskNotFound
		}

		now := s.clock.Now()
		if err := task.Transition(status, now); err != nil {
			return err
		}

		if status == domain.TaskStatusCompleted {
			customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, task.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return customerdomain.ErrNotFound
			}
			if err := customer.Activate(); err != nil {
				return err
			}
			customer.UpdatedAt = now
			if err := s.customerRepo.Update(ctx, tx, customer); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateTask(ctx, tx, task); err != nil {
			return err
		}

		_ = s.audit.Record(ctx, tx, "", "deployment.task.status", "deployment_task", task.ID.String(), map[string]any{
			"customer_id": task.CustomerID.String(),
			"status":      string(status),
		})

		updated = *task
		return nil
	})
	if err != nil {
		return domain.DeploymentTask{}, err
	}
	return updated, nil
}

package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/deployment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const taskColumns = `id, customer_id, technician_id, status, scheduled_for, notes, completed_at, created_at, updated_at`

func (r *repo) InsertTechnician(ctx context.Context, db *gorm.DB, technician *domain.Technician) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO technicians (id, name, phone, region, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		technician.ID,
		technician.Name,
		technician.Phone,
		technician.Region,
		technician.CreatedAt,
	).Error
}

func (r *repo) FindTechnicianByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Technician, error) {
	var technician domain.Technician
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, phone, region, created_at FROM technicians WHERE id = ?`,
		id,
	).Scan(&technician).Error
	if err != nil {
		return nil, err
	}
	if technician.ID == 0 {
		return nil, nil
	}
	return &technician, nil
}

func (r *repo) ListTechnicians(ctx context.Context, db *gorm.DB) ([]domain.Technician, error) {
	var technicians []domain.Technician
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, phone, region, created_at FROM technicians ORDER BY name, id`,
	).Scan(&technicians).Error
	if err != nil {
		return nil, err
	}
	return technicians, nil
}

func (r *repo) InsertTask(ctx context.Context, db *gorm.DB, task *domain.DeploymentTask) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO deployment_tasks (id, customer_id, technician_id, status, scheduled_for, notes, completed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.CustomerID,
		task.TechnicianID,
		task.Status,
		task.ScheduledFor,
		task.Notes,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	).Error
}

func (r *repo) FindTaskByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DeploymentTask, error) {
	var task domain.DeploymentTask
	err := db.WithContext(ctx).Raw(
		`SELECT `+taskColumns+` FROM deployment_tasks WHERE id = ?`,
		id,
	).Scan(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (r *repo) FindTaskByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DeploymentTask, error) {
	var task domain.DeploymentTask
	err := db.WithContext(ctx).Raw(
		`SELECT `+taskColumns+` FROM deployment_tasks WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (r *repo) ListTasks(ctx context.Context, db *gorm.DB, filter domain.ListTaskFilter) ([]domain.DeploymentTask, error) {
	stmt := db.WithContext(ctx).Model(&domain.DeploymentTask{})
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.TechnicianID != 0 {
		stmt = stmt.Where("technician_id = ?", filter.TechnicianID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var tasks []domain.DeploymentTask
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(filter.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repo) UpdateTask(ctx context.Context, db *gorm.DB, task *domain.DeploymentTask) error {
	return db.WithContext(ctx).Exec(
		`UPDATE deployment_tasks
		 SET technician_id = ?, status = ?, scheduled_for = ?, notes = ?, completed_at = ?, updated_at = ?
		 WHERE id = ?`,
		task.TechnicianID,
		task.Status,
		task.ScheduledFor,
		task.Notes,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
	).Error
}

func (r *repo) DeleteTasksForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM deployment_tasks WHERE customer_id = ?`,
		customerID,
	)
	return result.RowsAffected, result.Error
}

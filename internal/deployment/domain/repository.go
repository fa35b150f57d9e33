package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTechnician(ctx context.Context, db *gorm.DB, technician *Technician) error
	FindTechnicianByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Technician, error)
	ListTechnicians(ctx context.Context, db *gorm.DB) ([]Technician, error)

	InsertTask(ctx context.Context, db *gorm.DB, task *DeploymentTask) error
	FindTaskByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DeploymentTask, error)
	// FindTaskByIDForUpdate locks the task row for the duration of the
	// surrounding transaction.
	FindTaskByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DeploymentTask, error)
	ListTasks(ctx context.Context, db *gorm.DB, filter ListTaskFilter) ([]DeploymentTask, error)
	UpdateTask(ctx context.Context, db *gorm.DB, task *DeploymentTask) error
	// DeleteTasksForCustomer removes every task for a customer. Purge path only.
	DeleteTasksForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
}

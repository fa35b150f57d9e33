package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateTechnicianRequest struct {
	Name   string
	Phone  string
	Region string
}

type CreateTaskRequest struct {
	CustomerID   snowflake.ID
	TechnicianID *snowflake.ID
	ScheduledFor *time.Time
	Notes        string
}

type ListTaskFilter struct {
	CustomerID   snowflake.ID
	TechnicianID snowflake.ID
	Status       TaskStatus
	Limit        int
	Offset       int
}

type Service interface {
	CreateTechnician(ctx context.Context, req CreateTechnicianRequest) (Technician, error)
	ListTechnicians(ctx context.Context) ([]Technician, error)

	CreateTask(ctx context.Context, req CreateTaskRequest) (DeploymentTask, error)
	GetTask(ctx context.Context, id snowflake.ID) (DeploymentTask, error)
	ListTasks(ctx context.Context, filter ListTaskFilter) ([]DeploymentTask, error)
	// UpdateTaskStatus applies the transition; Completed also activates the
	// task's customer within the same transaction.
	UpdateTaskStatus(ctx context.Context, id snowflake.ID, status TaskStatus) (DeploymentTask, error)
}

var (
	ErrInvalidTechnician   = errors.New("invalid_technician")
	ErrTechnicianNotFound  = errors.New("technician_not_found")
	ErrTaskNotFound        = errors.New("deployment_task_not_found")
	ErrInvalidTaskStatus   = errors.New("invalid_task_status")
	ErrTaskClosed          = errors.New("deployment_task_closed")
	ErrTaskStatusUnchanged = errors.New("deployment_task_status_unchanged")
)

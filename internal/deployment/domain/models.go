package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TaskStatus string

const (
	TaskStatusScheduled  TaskStatus = "Scheduled"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusFailed     TaskStatus = "Failed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusScheduled, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the task can no longer change status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

type Technician struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Phone     string       `json:"phone,omitempty"`
	Region    string       `json:"region,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Technician) TableName() string { return "technicians" }

// DeploymentTask tracks the field work that takes a Pending customer live.
// Marking a task Completed is the only path that activates a customer.
type DeploymentTask struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	TechnicianID *snowflake.ID `gorm:"index" json:"technician_id,omitempty"`
	Status       TaskStatus    `gorm:"not null;default:'Scheduled'" json:"status"`
	ScheduledFor *time.Time    `json:"scheduled_for,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (DeploymentTask) TableName() string { return "deployment_tasks" }

// Transition validates and applies a status change. Completed and Failed
// tasks never move again.
func (t *DeploymentTask) Transition(next TaskStatus, at time.Time) error {
	if !next.Valid() {
		return ErrInvalidTaskStatus
	}
	if t.Status.Terminal() {
		return ErrTaskClosed
	}
	if next == t.Status {
		return ErrTaskStatusUnchanged
	}
	t.Status = next
	if next == TaskStatusCompleted {
		t.CompletedAt = &at
	}
	t.UpdatedAt = at
	return nil
}

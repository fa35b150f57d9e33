package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	Actor      string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
	Offset     int
}

type Service interface {
	// Record writes one audit entry. When tx is non-nil the entry commits or
	// rolls back with the caller's transaction. A blank actor falls back to
	// the context actor set by WithActor, then to "system".
	Record(ctx context.Context, tx *gorm.DB, actor, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]AuditEntry, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)

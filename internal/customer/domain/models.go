package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

type ConnectionType string

const (
	ConnectionWired    ConnectionType = "Wired"
	ConnectionWireless ConnectionType = "Wireless"
)

// Customer carries service status plus the live splitter/port binding.
// An Inactive customer keeps its splitter and port values for reference, but
// capacity math never counts it; the assignment ledger is the history surface.
type Customer struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Address        string         `json:"address,omitempty"`
	Neighborhood   string         `json:"neighborhood,omitempty"`
	Plan           string         `json:"plan,omitempty"`
	ConnectionType ConnectionType `gorm:"not null;default:'Wired'" json:"connection_type"`
	Status         Status         `gorm:"not null;default:'Pending'" json:"status"`
	SplitterID     *snowflake.ID  `gorm:"index" json:"splitter_id,omitempty"`
	AssignedPort   *int           `json:"assigned_port,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// Activate moves Pending service live. Only a completed deployment drives
// this transition; Inactive customers must pass through Pending again.
func (c *Customer) Activate() error {
	if c.Status != StatusPending {
		return ErrNotPending
	}
	c.Status = StatusActive
	return nil
}

// Deactivate takes Active or Pending service out of rotation. Splitter and
// port values stay on the row.
func (c *Customer) Deactivate() error {
	if c.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	c.Status = StatusInactive
	return nil
}

// Reactivate returns an Inactive customer to Pending. A fresh deployment is
// required before the customer is Active again.
func (c *Customer) Reactivate() error {
	switch c.Status {
	case StatusActive:
		return ErrAlreadyActive
	case StatusPending:
		return ErrAlreadyPending
	}
	c.Status = StatusPending
	return nil
}

// Occupying reports whether this customer counts against splitter capacity.
// This is the single predicate behind available-port and used-port math.
func (c *Customer) Occupying() bool {
	return c.SplitterID != nil && c.AssignedPort != nil &&
		(c.Status == StatusActive || c.Status == StatusPending)
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Headend is the root site of the plant hierarchy, feeding one or more FDHs.
type Headend struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Location  string       `json:"location,omitempty"`
	Region    string       `json:"region,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Headend) TableName() string { return "headends" }

// FDH is a fiber distribution hub. The headend reference is optional; a cabinet
// can be registered before its uplink is planned.
type FDH struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	HeadendID *snowflake.ID `gorm:"index" json:"headend_id,omitempty"`
	Name      string        `gorm:"not null" json:"name"`
	Location  string        `json:"location,omitempty"`
	Region    string        `json:"region,omitempty"`
	MaxPorts  int           `gorm:"not null;default:8" json:"max_ports"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FDH) TableName() string { return "fdhs" }

// Splitter fans one upstream fiber into PortCapacity customer-facing ports.
// UsedPorts is a materialized count maintained by the port allocation manager;
// it is never the source of truth, the customer table is.
type Splitter struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FDHID        snowflake.ID `gorm:"not null;index" json:"fdh_id"`
	Model        string       `json:"model,omitempty"`
	PortCapacity int          `gorm:"not null" json:"port_capacity"`
	UsedPorts    int          `gorm:"not null;default:0" json:"used_ports"`
	Location     string       `json:"location,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Splitter) TableName() string { return "splitters" }

// FiberDropLine is the physical run from a splitter to a customer premises.
// Created during onboarding, deleted only when the customer is purged.
type FiberDropLine struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SplitterID   snowflake.ID `gorm:"not null;index" json:"splitter_id"`
	CustomerID   snowflake.ID `gorm:"not null;index" json:"customer_id"`
	LengthMeters float64      `json:"length_meters,omitempty"`
	Status       string       `gorm:"not null;default:'Active'" json:"status"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FiberDropLine) TableName() string { return "fiber_drop_lines" }

const (
	DropLineActive       = "Active"
	DropLineDisconnected = "Disconnected"
)

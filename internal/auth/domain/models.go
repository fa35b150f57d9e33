package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin        Role = "Admin"
	RolePlanner      Role = "Planner"
	RoleTechnician   Role = "Technician"
	RoleSupportAgent Role = "SupportAgent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlanner, RoleTechnician, RoleSupportAgent:
		return true
	}
	return false
}

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex" json:"username"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         Role         `gorm:"not null" json:"role"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string { return "users" }

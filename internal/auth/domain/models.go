// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is a tenant-configured role. Approval rule steps may reference a role
// by name instead of a specific user.
type Role struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Role) TableName() string { return "roles" }

// User represents a tenant user account.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	RoleID       snowflake.ID `gorm:"column:role_id;not null;index" json:"role_id"`
	Role         *Role        `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

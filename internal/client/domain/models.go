package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is a converted customer organization.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Industry  *string      `gorm:"type:text" json:"industry,omitempty"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Client) TableName() string { return "clients" }

// ClientBranch is a billing location. Its state is the preferred customer
// side of the GST jurisdiction decision; quotes without a linked branch fall
// back to their free-text billing state.
type ClientBranch struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID  snowflake.ID `gorm:"column:client_id;not null;index" json:"client_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	State     string       `gorm:"type:text" json:"state"`
	GSTIN     *string      `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ClientBranch) TableName() string { return "client_branches" }

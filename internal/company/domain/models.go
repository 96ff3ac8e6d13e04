package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the selling entity configured per tenant.
type Company struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	GSTIN     *string      `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Company) TableName() string { return "companies" }

// CompanyBranch is the issuing branch on a quote. Its registered state is the
// origin side of the GST jurisdiction decision.
type CompanyBranch struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"column:company_id;not null;index" json:"company_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	State     string       `gorm:"type:text" json:"state"`
	GSTIN     *string      `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CompanyBranch) TableName() string { return "company_branches" }

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Opportunity is the pipeline deal a quote prices. Quotes are versioned per
// opportunity.
type Opportunity struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:text;not null" json:"name"`
	OwnerID        snowflake.ID    `gorm:"column:owner_id;not null;index" json:"owner_id"`
	ClientID       *snowflake.ID   `gorm:"column:client_id;index" json:"client_id,omitempty"`
	ClientBranchID *snowflake.ID   `gorm:"column:client_branch_id;index" json:"client_branch_id,omitempty"`
	Stage          string          `gorm:"type:text;not null;default:'Open'" json:"stage"`
	EstimatedValue decimal.Decimal `gorm:"column:estimated_value;type:decimal(18,4);not null;default:0" json:"estimated_value"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Opportunity) TableName() string { return "opportunities" }

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Opportunity, error)
	Insert(ctx context.Context, db *gorm.DB, opp *Opportunity) error
}

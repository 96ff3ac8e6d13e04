package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ApproverType discriminates who may act on a step.
type ApproverType string

const (
	ApproverUser ApproverType = "USER"
	ApproverRole ApproverType = "ROLE"
)

// ApproverSpec names the actor for one step: a specific user or anyone
// holding a role. Exactly one of UserID / RoleName is set, per Type.
type ApproverSpec struct {
	Type     ApproverType  `gorm:"column:approver_type;type:text;not null" json:"type"`
	UserID   *snowflake.ID `gorm:"column:approver_user_id" json:"user_id,omitempty"`
	RoleName *string       `gorm:"column:approver_role;type:text" json:"role_name,omitempty"`
}

// Matches reports whether the acting principal may act for this approver.
func (s ApproverSpec) Matches(userID snowflake.ID, roleName string) bool {
	switch s.Type {
	case ApproverUser:
		return s.UserID != nil && *s.UserID == userID
	case ApproverRole:
		return s.RoleName != nil && *s.RoleName == roleName
	}
	return false
}

// ApprovalRule is one amount band in the tenant's approval matrix. A quote
// whose total falls inside [MinAmount, MaxAmount] collects this rule's steps;
// a nil MaxAmount leaves the band open-ended.
type ApprovalRule struct {
	ID        snowflake.ID       `gorm:"primaryKey" json:"id"`
	Name      string             `gorm:"type:text;not null" json:"name"`
	MinAmount decimal.Decimal    `gorm:"column:min_amount;type:decimal(18,4);not null;default:0" json:"min_amount"`
	MaxAmount *decimal.Decimal   `gorm:"column:max_amount;type:decimal(18,4)" json:"max_amount,omitempty"`
	SortOrder int                `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	IsActive  bool               `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Steps     []ApprovalRuleStep `gorm:"foreignKey:RuleID" json:"steps"`
	CreatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ApprovalRule) TableName() string { return "approval_rules" }

// ApprovalRuleStep is one ordered approver inside a rule. Inactive steps are
// skipped when a chain is materialized.
type ApprovalRuleStep struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	RuleID    snowflake.ID `gorm:"column:rule_id;not null;index" json:"rule_id"`
	StepOrder int          `gorm:"column:step_order;not null" json:"step_order"`
	Approver  ApproverSpec `gorm:"embedded" json:"approver"`
	IsActive  bool         `gorm:"column:is_active;not null" json:"is_active"`
}

func (ApprovalRuleStep) TableName() string { return "approval_rule_steps" }

// Per-step approval statuses. Exactly one row is PENDING at a time; the rest
// of the chain waits behind it.
const (
	StatusWaiting   = "WAITING"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// QuoteApproval is one materialized step of a quote's approval chain.
// StepOrder is global across every matched rule, 1..N in chain order.
type QuoteApproval struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteID    snowflake.ID `gorm:"column:quote_id;not null;index" json:"quote_id"`
	RuleID     snowflake.ID `gorm:"column:rule_id;not null" json:"rule_id"`
	RuleStepID snowflake.ID `gorm:"column:rule_step_id;not null" json:"rule_step_id"`
	StepOrder  int          `gorm:"column:step_order;not null" json:"step_order"`

	Approver ApproverSpec `gorm:"embedded" json:"approver"`
	Status   string       `gorm:"type:text;not null;default:'WAITING';index" json:"status"`

	ActedByID *snowflake.ID `gorm:"column:acted_by_id" json:"acted_by_id,omitempty"`
	ActedAt   *time.Time    `gorm:"column:acted_at" json:"acted_at,omitempty"`
	Comment   *string       `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (QuoteApproval) TableName() string { return "quote_approvals" }

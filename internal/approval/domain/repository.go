package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListRules(ctx context.Context, db *gorm.DB) ([]ApprovalRule, error)
	ListActiveRules(ctx context.Context, db *gorm.DB) ([]ApprovalRule, error)
	FindRuleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ApprovalRule, error)
	InsertRule(ctx context.Context, db *gorm.DB, rule *ApprovalRule) error
	SaveRule(ctx context.Context, db *gorm.DB, rule *ApprovalRule) error
	ReplaceSteps(ctx context.Context, db *gorm.DB, ruleID snowflake.ID, steps []ApprovalRuleStep) error
	DeleteRule(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// ReplaceChain deletes any prior approval rows for the quote and inserts
	// the new chain in one transaction.
	ReplaceChain(ctx context.Context, db *gorm.DB, quoteID snowflake.ID, approvals []QuoteApproval) error
	FindApprovalByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*QuoteApproval, error)
	ListByQuote(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]QuoteApproval, error)
	FirstWithStatus(ctx context.Context, db *gorm.DB, quoteID snowflake.ID, status string) (*QuoteApproval, error)
	ListPendingFor(ctx context.Context, db *gorm.DB, userID snowflake.ID, roleName string) ([]QuoteApproval, error)

	// TransitionStatus moves one row from expected to next only if it still
	// holds expected, recording who acted and reporting whether the swap won.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected, next string, actedBy snowflake.ID, actedAt time.Time, comment *string) (bool, error)
	// SetStatus is TransitionStatus without the audit fields, used to promote
	// the next WAITING step.
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected, next string) (bool, error)
	// CancelRemaining cancels every WAITING row of the quote's chain.
	CancelRemaining(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) error
}

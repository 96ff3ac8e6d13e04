package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type StepInput struct {
	Approver ApproverSpec `json:"approver"`
	// Active defaults to true when omitted.
	Active *bool `json:"active,omitempty"`
}

type CreateRuleRequest struct {
	Name      string           `json:"name"`
	MinAmount decimal.Decimal  `json:"min_amount"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
	SortOrder int              `json:"sort_order"`
	Steps     []StepInput      `json:"steps"`
}

type UpdateRuleRequest struct {
	ID        string           `json:"-"`
	Name      *string          `json:"name,omitempty"`
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
	SortOrder *int             `json:"sort_order,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
	Steps     []StepInput      `json:"steps,omitempty"`
}

type ActRequest struct {
	ApprovalID string `json:"-"`
	Approve    bool   `json:"approve"`
	Comment    string `json:"comment"`
}

// RequestResult reports what submitting a quote produced: either a chain of
// materialized steps, or an immediate auto-approval when no rule matched.
type RequestResult struct {
	AutoApproved bool            `json:"auto_approved"`
	Approvals    []QuoteApproval `json:"approvals"`
}

// InboxEntry is one actionable approval for the calling principal.
type InboxEntry struct {
	Approval  QuoteApproval   `json:"approval"`
	QuoteCode string          `json:"quote_code"`
	Total     decimal.Decimal `json:"total"`
}

type Service interface {
	// Request materializes the approval chain for a quote from the rules
	// matching its total. Re-requesting replaces any previous chain. With no
	// matching rule the quote is approved outright.
	Request(ctx context.Context, quoteID string) (RequestResult, error)

	// Act approves or rejects the caller's PENDING step. Approval promotes
	// the next waiting step, or approves the quote when the chain is done.
	// Rejection cancels every remaining step and rejects the quote.
	Act(ctx context.Context, req ActRequest) (QuoteApproval, error)

	// Inbox lists PENDING steps the calling principal may act on.
	Inbox(ctx context.Context) ([]InboxEntry, error)

	ListByQuote(ctx context.Context, quoteID string) ([]QuoteApproval, error)

	CreateRule(ctx context.Context, req CreateRuleRequest) (ApprovalRule, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (ApprovalRule, error)
	ListRules(ctx context.Context) ([]ApprovalRule, error)
	DeleteRule(ctx context.Context, id string) error
}

var (
	ErrRuleNotFound      = errors.New("rule_not_found")
	ErrRuleMisconfigured = errors.New("rule_misconfigured")
	ErrInvalidRule       = errors.New("invalid_rule")
	ErrApprovalNotFound  = errors.New("approval_not_found")
	ErrNotAuthorized     = errors.New("not_authorized")
	ErrConflict          = errors.New("approval_conflict")
)

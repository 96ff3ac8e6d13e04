package domain

import (
	"context"
	"errors"
	"time"

	"github.com/orbitcrm/orbitcrm/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ItemName     string          `json:"item_name"`
	Description  *string         `json:"description,omitempty"`
	Qty          decimal.Decimal `json:"qty"`
	Rate         decimal.Decimal `json:"rate"`
	BillingCycle string          `json:"billing_cycle"`
	SortOrder    int             `json:"sort_order"`
}

type CreateQuoteRequest struct {
	OpportunityID   string
	Currency        string
	Discount        decimal.Decimal
	CompanyBranchID string
	BillingState    string
	BillingGSTIN    string
	IsGSTApplicable bool
	ValidUntil      *time.Time
	Notes           string
	Items           []ItemInput
}

type UpdateQuoteRequest struct {
	ID              string
	Discount        *decimal.Decimal
	Currency        string
	CompanyBranchID string
	BillingState    *string
	IsGSTApplicable *bool
	Items           []ItemInput
}

type QuoteView struct {
	Quote Quote       `json:"quote"`
	Items []QuoteItem `json:"items"`
}

type QuoteList struct {
	Quotes   []Quote             `json:"quotes"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// Create builds a new quote version for an opportunity and runs the
	// recalculation engine before persisting.
	Create(ctx context.Context, req CreateQuoteRequest) (QuoteView, error)

	// Get recalculates and returns the aggregate; stored totals are never
	// served stale.
	Get(ctx context.Context, id string) (QuoteView, error)

	ListByOpportunity(ctx context.Context, opportunityID string, page pagination.Pagination) (QuoteList, error)

	// Update replaces mutable fields and line items, then recalculates.
	// Rejected once the quote is locked.
	Update(ctx context.Context, req UpdateQuoteRequest) (QuoteView, error)

	// NewVersion clones the quote and its items into a fresh Draft with the
	// next version number for the opportunity.
	NewVersion(ctx context.Context, id string) (QuoteView, error)

	// MarkSent transitions an Approved quote to Sent.
	MarkSent(ctx context.Context, id string) (QuoteView, error)

	// RequestProforma and RequestInvoice open the sales-to-finance handoff;
	// Complete* records finance's decision.
	RequestProforma(ctx context.Context, id, note string) (QuoteView, error)
	CompleteProforma(ctx context.Context, id string, approve bool) (QuoteView, error)
	RequestInvoice(ctx context.Context, id, note string) (QuoteView, error)
	CompleteInvoice(ctx context.Context, id string, approve bool) (QuoteView, error)
}

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrNotFound            = errors.New("quote_not_found")
	ErrOpportunityNotFound = errors.New("opportunity_not_found")
	ErrQuoteLocked         = errors.New("quote_locked")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidItem         = errors.New("invalid_item")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrStatusMissing       = errors.New("status_vocabulary_missing")
	ErrRequestNotPending   = errors.New("request_not_pending")
	ErrAlreadyRequested    = errors.New("request_already_pending")
)

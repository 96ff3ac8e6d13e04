package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status vocabulary. Rows are seeded per tenant; quotes reference them by id.
const (
	StatusDraft           = "Draft"
	StatusPendingApproval = "Pending Approval"
	StatusApproved        = "Approved"
	StatusSelected        = "Selected"
	StatusRejected        = "Rejected"
	StatusSent            = "Sent"
)

// LockedStatuses are the states in which a quote can no longer be edited or
// re-submitted for approval.
var LockedStatuses = []string{StatusPendingApproval, StatusApproved, StatusSent, StatusSelected}

type QuoteStatus struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	SortOrder int          `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (QuoteStatus) TableName() string { return "quote_statuses" }

// DocRequestState is the linear sales-to-finance handoff for proforma and
// invoice generation.
type DocRequestState string

const (
	DocRequestNone     DocRequestState = "NONE"
	DocRequestPending  DocRequestState = "PENDING"
	DocRequestApproved DocRequestState = "APPROVED"
	DocRequestRejected DocRequestState = "REJECTED"
)

// DocumentRequest models one request/generate handoff with its audit fields.
type DocumentRequest struct {
	State         DocRequestState `gorm:"column:request_state;type:text;not null;default:'NONE'" json:"state"`
	Note          *string         `gorm:"column:request_note;type:text" json:"note,omitempty"`
	RequestedAt   *time.Time      `gorm:"column:requested_at" json:"requested_at,omitempty"`
	RequestedByID *snowflake.ID   `gorm:"column:requested_by_id" json:"requested_by_id,omitempty"`
	CompletedAt   *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CompletedByID *snowflake.ID   `gorm:"column:completed_by_id" json:"completed_by_id,omitempty"`
}

// Quote is a priced proposal for one opportunity, versioned per opportunity.
// Monetary fields are derived state: the recalculation engine rewrites all of
// them before they are trusted anywhere. Total is canonical; TotalAmount is a
// legacy alias column always written with the same value.
type Quote struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteCode string       `gorm:"column:quote_code;type:text;not null;uniqueIndex" json:"quote_code"`
	Version   int          `gorm:"not null;default:1" json:"version"`

	OpportunityID snowflake.ID `gorm:"column:opportunity_id;not null;index" json:"opportunity_id"`
	StatusID      snowflake.ID `gorm:"column:status_id;not null;index" json:"status_id"`
	Status        *QuoteStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	CreatedByID   snowflake.ID `gorm:"column:created_by_id;not null" json:"created_by_id"`

	ClientID       *snowflake.ID `gorm:"column:client_id;index" json:"client_id,omitempty"`
	ClientBranchID *snowflake.ID `gorm:"column:client_branch_id;index" json:"client_branch_id,omitempty"`

	// CompanyBranchID is the issuing branch: the origin side of the GST
	// jurisdiction decision.
	CompanyBranchID *snowflake.ID `gorm:"column:company_branch_id;index" json:"company_branch_id,omitempty"`

	Currency string          `gorm:"type:text;not null;default:'INR'" json:"currency"`
	Subtotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	CGST     decimal.Decimal `gorm:"column:cgst;type:decimal(18,4);not null;default:0" json:"cgst"`
	SGST     decimal.Decimal `gorm:"column:sgst;type:decimal(18,4);not null;default:0" json:"sgst"`
	IGST     decimal.Decimal `gorm:"column:igst;type:decimal(18,4);not null;default:0" json:"igst"`
	Tax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax"`
	Total    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	// TotalAmount duplicates Total for compatibility with older readers.
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(18,4);not null;default:0" json:"total_amount"`

	BillingState    string  `gorm:"column:billing_state;type:text" json:"billing_state"`
	BillingGSTIN    *string `gorm:"column:billing_gstin;type:text" json:"billing_gstin,omitempty"`
	IsGSTApplicable bool    `gorm:"column:is_gst_applicable;not null;default:true" json:"is_gst_applicable"`

	ValidUntil *time.Time `gorm:"column:valid_until" json:"valid_until,omitempty"`
	Notes      *string    `gorm:"type:text" json:"notes,omitempty"`

	ProformaRequest DocumentRequest `gorm:"embedded;embeddedPrefix:pi_" json:"proforma_request"`
	InvoiceRequest  DocumentRequest `gorm:"embedded;embeddedPrefix:invoice_" json:"invoice_request"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

// Locked reports whether the quote is in a state that freezes edits and
// approval re-requests.
func (q *Quote) Locked() bool {
	if q.Status == nil {
		return false
	}
	for _, name := range LockedStatuses {
		if q.Status.Name == name {
			return true
		}
	}
	return false
}

// QuoteItem is one line owned by exactly one quote.
// Amount == Qty * Rate * multiplier(BillingCycle), maintained by the engine.
type QuoteItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	QuoteID      snowflake.ID    `gorm:"column:quote_id;not null;index" json:"quote_id"`
	ItemName     string          `gorm:"column:item_name;type:text;not null" json:"item_name"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	Qty          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:1" json:"qty"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"rate"`
	BillingCycle string          `gorm:"column:billing_cycle;type:text;not null;default:'ONETIME'" json:"billing_cycle"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	SortOrder    int             `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

func (QuoteItem) TableName() string { return "quote_items" }

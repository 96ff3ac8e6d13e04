package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Collection statuses. Only Verified collections count toward a quote's
// collected amount.
const (
	StatusPending  = "Pending"
	StatusVerified = "Verified"
	StatusRejected = "Rejected"
)

// PaymentCollection is one recorded payment against a quote, verified by
// finance before it counts.
type PaymentCollection struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteID snowflake.ID `gorm:"column:quote_id;not null;index" json:"quote_id"`

	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method    string          `gorm:"type:text;not null" json:"method"`
	Reference *string         `gorm:"type:text" json:"reference,omitempty"`
	Notes     *string         `gorm:"type:text" json:"notes,omitempty"`

	Status       string        `gorm:"type:text;not null;default:'Pending';index" json:"status"`
	RecordedByID snowflake.ID  `gorm:"column:recorded_by_id;not null" json:"recorded_by_id"`
	VerifiedByID *snowflake.ID `gorm:"column:verified_by_id" json:"verified_by_id,omitempty"`
	VerifiedAt   *time.Time    `gorm:"column:verified_at" json:"verified_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PaymentCollection) TableName() string { return "payment_collections" }

type RecordRequest struct {
	QuoteID   string          `json:"-"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// Summary is the collection position of one quote. Remaining is computed
// against the quote's canonical total and floors at zero.
type Summary struct {
	QuoteID   snowflake.ID    `json:"quote_id"`
	Total     decimal.Decimal `json:"total"`
	Collected decimal.Decimal `json:"collected"`
	Remaining decimal.Decimal `json:"remaining"`
}

type Service interface {
	// Record books a Pending collection against a quote.
	Record(ctx context.Context, req RecordRequest) (PaymentCollection, error)
	// Verify marks a Pending collection Verified or Rejected.
	Verify(ctx context.Context, id string, approve bool) (PaymentCollection, error)
	ListByQuote(ctx context.Context, quoteID string) ([]PaymentCollection, error)
	Summarize(ctx context.Context, quoteID string) (Summary, error)
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentCollection, error)
	ListByQuote(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]PaymentCollection, error)
	Insert(ctx context.Context, db *gorm.DB, collection *PaymentCollection) error
	// TransitionStatus swaps Pending for the verdict only if the row is still
	// Pending.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, next string, verifiedBy snowflake.ID, verifiedAt time.Time) (bool, error)
	SumVerified(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (decimal.Decimal, error)
}

var (
	ErrNotFound      = errors.New("collection_not_found")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrNotPending    = errors.New("collection_not_pending")
)

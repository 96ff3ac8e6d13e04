package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	FindItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]QuoteItem, error)
	ListByOpportunity(ctx context.Context, db *gorm.DB, opportunityID snowflake.ID, page pagination.Pagination) ([]*Quote, error)

	Insert(ctx context.Context, db *gorm.DB, quote *Quote, items []QuoteItem) error
	Save(ctx context.Context, db *gorm.DB, quote *Quote) error
	ReplaceItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID, items []QuoteItem) error
	// SaveTotals persists the engine's output for the quote and every item in
	// one transaction.
	SaveTotals(ctx context.Context, db *gorm.DB, quote *Quote, items []QuoteItem) error

	GetStatusByName(ctx context.Context, db *gorm.DB, name string) (*QuoteStatus, error)
	NextVersion(ctx context.Context, db *gorm.DB, opportunityID snowflake.ID) (int, error)
	CountQuotes(ctx context.Context, db *gorm.DB) (int64, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"github.com/orbitcrm/orbitcrm/pkg/db/option"
	"github.com/orbitcrm/orbitcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Preload("Status").
		Where("id = ?", id).
		First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("sort_order asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByOpportunity(ctx context.Context, db *gorm.DB, opportunityID snowflake.ID, page pagination.Pagination) ([]*domain.Quote, error) {
	var quotes []*domain.Quote
	stmt := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Preload("Status").
		Where("opportunity_id = ?", opportunityID)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Save(quote).Error
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID, items []domain.QuoteItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quoteID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) SaveTotals(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]any{
				"subtotal":     quote.Subtotal,
				"cgst":         quote.CGST,
				"sgst":         quote.SGST,
				"igst":         quote.IGST,
				"tax":          quote.Tax,
				"total":        quote.Total,
				"total_amount": quote.TotalAmount,
				"updated_at":   quote.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Model(&domain.QuoteItem{}).
				Where("id = ?", items[i].ID).
				Updates(map[string]any{
					"billing_cycle": items[i].BillingCycle,
					"amount":        items[i].Amount,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) GetStatusByName(ctx context.Context, db *gorm.DB, name string) (*domain.QuoteStatus, error) {
	var status domain.QuoteStatus
	err := db.WithContext(ctx).Where("name = ?", name).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repo) NextVersion(ctx context.Context, db *gorm.DB, opportunityID snowflake.ID) (int, error) {
	var max int
	err := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("opportunity_id = ?", opportunityID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repo) CountQuotes(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Quote{}).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

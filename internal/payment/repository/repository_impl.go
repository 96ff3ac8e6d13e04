package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/payment/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentCollection, error) {
	var collection domain.PaymentCollection
	err := db.WithContext(ctx).Where("id = ?", id).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *repo) ListByQuote(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]domain.PaymentCollection, error) {
	var collections []domain.PaymentCollection
	err := db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at asc, id asc").
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, collection *domain.PaymentCollection) error {
	return db.WithContext(ctx).Create(collection).Error
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, next string, verifiedBy snowflake.ID, verifiedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.PaymentCollection{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":         next,
			"verified_by_id": verifiedBy,
			"verified_at":    verifiedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SumVerified(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&domain.PaymentCollection{}).
		Where("quote_id = ? AND status = ?", quoteID, domain.StatusVerified).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/opportunity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := db.WithContext(ctx).Where("id = ?", id).First(&opp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, opp *domain.Opportunity) error {
	return db.WithContext(ctx).Create(opp).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/company/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CompanyBranch, error) {
	var branch domain.CompanyBranch
	err := db.WithContext(ctx).Where("id = ?", id).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repo) InsertCompany(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Create(company).Error
}

func (r *repo) InsertBranch(ctx context.Context, db *gorm.DB, branch *domain.CompanyBranch) error {
	return db.WithContext(ctx).Create(branch).Error
}

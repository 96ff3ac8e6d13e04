package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/client/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ClientBranch, error) {
	var branch domain.ClientBranch
	err := db.WithContext(ctx).Where("id = ?", id).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repo) InsertClient(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Create(client).Error
}

func (r *repo) InsertBranch(ctx context.Context, db *gorm.DB, branch *domain.ClientBranch) error {
	return db.WithContext(ctx).Create(branch).Error
}

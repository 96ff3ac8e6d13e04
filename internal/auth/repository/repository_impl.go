package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Preload("Role").
		Where("email = ?", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Preload("Role").
		Where("id = ?", id).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) InsertRole(ctx context.Context, db *gorm.DB, role *domain.Role) error {
	return db.WithContext(ctx).Create(role).Error
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

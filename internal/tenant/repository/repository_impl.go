package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := db.WithContext(ctx).Order("slug asc").Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Create(tenant).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Save(tenant).Error
}

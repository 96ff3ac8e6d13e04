package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Tenant is one registry row in the platform database. Tenant rows never live
// in tenant databases; the registry is always read through the platform
// handle.
type Tenant struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Name string       `gorm:"type:text;not null" json:"name"`

	// DatabaseDSN is the tenant's own database. Empty means the tenant shares
	// the process default bind.
	DatabaseDSN string `gorm:"column:database_dsn;type:text" json:"-"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

type Repository interface {
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]Tenant, error)
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	Save(ctx context.Context, db *gorm.DB, tenant *Tenant) error
}

var (
	ErrNotFound   = errors.New("tenant_not_found")
	ErrInactive   = errors.New("tenant_inactive")
	ErrSlugTaken  = errors.New("slug_taken")
	ErrInvalidDSN = errors.New("invalid_dsn")
)

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/orbitcrm/orbitcrm/internal/tenant/domain"
)

// PlatformAdmin is an operator account in the platform database. Platform
// admins manage the tenant registry; they are not tenant users.
type PlatformAdmin struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	IsActive     bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PlatformAdmin) TableName() string { return "platform_admins" }

type CreateTenantRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DatabaseDSN string `json:"database_dsn"`
	AdminEmail  string `json:"admin_email"`
	AdminName   string `json:"admin_name"`
	// AdminPassword seeds the tenant's first user. Empty skips user seeding.
	AdminPassword string `json:"admin_password"`
}

type Service interface {
	// CreateTenant registers a tenant, provisions its database schema, and
	// seeds the status vocabulary, roles, and first admin user.
	CreateTenant(ctx context.Context, req CreateTenantRequest) (tenantdomain.Tenant, error)
	ListTenants(ctx context.Context) ([]tenantdomain.Tenant, error)
	// SetTenantActive flips the registry's active flag; deactivated tenants
	// stop resolving on their subdomain.
	SetTenantActive(ctx context.Context, id string, active bool) (tenantdomain.Tenant, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
)

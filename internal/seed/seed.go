package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/auth/password"
	platformdomain "github.com/orbitcrm/orbitcrm/internal/platform/domain"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@orbitcrm.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "OrbitCRM Admin"

	RoleAdmin       = "Admin"
	RoleSales       = "Sales"
	RoleManager     = "Manager"
	RoleFinanceHead = "Finance Head"
)

var defaultStatuses = []string{
	quotedomain.StatusDraft,
	quotedomain.StatusPendingApproval,
	quotedomain.StatusApproved,
	quotedomain.StatusSelected,
	quotedomain.StatusRejected,
	quotedomain.StatusSent,
}

var defaultRoles = []string{RoleAdmin, RoleSales, RoleManager, RoleFinanceHead}

// EnsureTenantDefaults seeds the status vocabulary and role set a tenant
// database needs before any workflow can run. Idempotent.
func EnsureTenantDefaults(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, name := range defaultStatuses {
			var status quotedomain.QuoteStatus
			err := tx.Where("name = ?", name).First(&status).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			status = quotedomain.QuoteStatus{
				ID:        node.Generate(),
				Name:      name,
				SortOrder: i,
				IsActive:  true,
			}
			if err := tx.Create(&status).Error; err != nil {
				return err
			}
		}

		for _, name := range defaultRoles {
			var role authdomain.Role
			err := tx.Where("name = ?", name).First(&role).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			role = authdomain.Role{
				ID:        node.Generate(),
				Name:      name,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureTenantAdmin seeds one admin user into a tenant database. Idempotent
// on email.
func EnsureTenantAdmin(db *gorm.DB, node *snowflake.Node, name, email, plaintext string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("seed admin email is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role authdomain.Role
		if err := tx.Where("name = ?", RoleAdmin).First(&role).Error; err != nil {
			return err
		}

		var user authdomain.User
		err := tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(plaintext)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Name:         name,
			Email:        email,
			PasswordHash: hashed,
			RoleID:       role.ID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&user).Error
	})
}

// EnsureDefaults seeds the vocabulary, roles, and the default admin account
// for self-hosted setups where the default bind doubles as the only tenant.
func EnsureDefaults(db *gorm.DB, node *snowflake.Node) error {
	if err := EnsureTenantDefaults(db, node); err != nil {
		return err
	}
	return EnsureTenantAdmin(db, node, defaultAdminDisplay, defaultAdminEmail, defaultAdminPassword)
}

// EnsurePlatformAdmin seeds one operator account in the platform database.
func EnsurePlatformAdmin(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	var admin platformdomain.PlatformAdmin
	err := db.WithContext(ctx).Where("email = ?", defaultAdminEmail).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}
	admin = platformdomain.PlatformAdmin{
		ID:           node.Generate(),
		Name:         defaultAdminDisplay,
		Email:        defaultAdminEmail,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(&admin).Error
}

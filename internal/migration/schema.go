package migration

import (
	approvaldomain "github.com/orbitcrm/orbitcrm/internal/approval/domain"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	clientdomain "github.com/orbitcrm/orbitcrm/internal/client/domain"
	companydomain "github.com/orbitcrm/orbitcrm/internal/company/domain"
	opportunitydomain "github.com/orbitcrm/orbitcrm/internal/opportunity/domain"
	paymentdomain "github.com/orbitcrm/orbitcrm/internal/payment/domain"
	platformdomain "github.com/orbitcrm/orbitcrm/internal/platform/domain"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	tenantdomain "github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	"gorm.io/gorm"
)

// TenantSchema brings one tenant database up to the current schema. Postgres
// binds run the embedded SQL set; everything else (dev and test sqlite) goes
// through AutoMigrate.
func TenantSchema(gdb *gorm.DB) error {
	if gdb.Dialector.Name() == "postgres" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return Run(sqlDB, SetTenant)
	}
	return gdb.AutoMigrate(
		&authdomain.Role{},
		&authdomain.User{},
		&quotedomain.QuoteStatus{},
		&companydomain.Company{},
		&companydomain.CompanyBranch{},
		&clientdomain.Client{},
		&clientdomain.ClientBranch{},
		&opportunitydomain.Opportunity{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&approvaldomain.ApprovalRule{},
		&approvaldomain.ApprovalRuleStep{},
		&approvaldomain.QuoteApproval{},
		&paymentdomain.PaymentCollection{},
	)
}

// PlatformSchema brings the registry database up to the current schema.
func PlatformSchema(gdb *gorm.DB) error {
	if gdb.Dialector.Name() == "postgres" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return Run(sqlDB, SetPlatform)
	}
	return gdb.AutoMigrate(
		&tenantdomain.Tenant{},
		&platformdomain.PlatformAdmin{},
	)
}

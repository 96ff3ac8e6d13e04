package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/platform/domain"
	"github.com/orbitcrm/orbitcrm/internal/platform/service"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	tenantdomain "github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	tenantrepo "github.com/orbitcrm/orbitcrm/internal/tenant/repository"
	"github.com/orbitcrm/orbitcrm/internal/tenant/routing"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *routing.EngineCache) {
	t.Helper()

	platform, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, platform.AutoMigrate(&tenantdomain.Tenant{}, &domain.PlatformAdmin{}))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	engines := routing.NewEngineCache(db.Config{}, zap.NewNop())
	t.Cleanup(engines.Close)

	svc := service.New(service.Params{
		Platform: platform,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     tenantrepo.Provide(),
		Engines:  engines,
	})
	return svc, engines
}

func TestCreateTenant_ProvisionsSchemaAndSeeds(t *testing.T) {
	svc, engines := newService(t)

	tenant, err := svc.CreateTenant(context.Background(), domain.CreateTenantRequest{
		Name:          "Acme Corp",
		DatabaseDSN:   "file:acme_provision?mode=memory&cache=shared",
		AdminEmail:    "owner@acme.test",
		AdminName:     "Acme Owner",
		AdminPassword: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", tenant.Slug)
	assert.True(t, tenant.IsActive)

	engine, err := engines.Get(&tenant)
	require.NoError(t, err)
	require.NotNil(t, engine)

	var statusCount int64
	require.NoError(t, engine.Model(&quotedomain.QuoteStatus{}).Count(&statusCount).Error)
	assert.EqualValues(t, 6, statusCount)

	var user authdomain.User
	require.NoError(t, engine.Preload("Role").Where("email = ?", "owner@acme.test").First(&user).Error)
	assert.Equal(t, "Admin", user.Role.Name)
	assert.NotEqual(t, "secret", user.PasswordHash)
}

func TestCreateTenant_DuplicateSlug(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateTenant(ctx, domain.CreateTenantRequest{
		Name:        "Acme",
		DatabaseDSN: "file:acme_dup?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	_, err = svc.CreateTenant(ctx, domain.CreateTenantRequest{
		Name:        "ACME",
		DatabaseDSN: "file:acme_dup2?mode=memory&cache=shared",
	})
	assert.ErrorIs(t, err, tenantdomain.ErrSlugTaken)
}

func TestCreateTenant_InvalidDSN(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateTenant(context.Background(), domain.CreateTenantRequest{
		Name:        "Broken",
		DatabaseDSN: "carrier-pigeon://coop",
	})
	assert.ErrorIs(t, err, tenantdomain.ErrInvalidDSN)
}

func TestCreateTenant_RequiresName(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateTenant(context.Background(), domain.CreateTenantRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestSetTenantActive_Toggles(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tenant, err := svc.CreateTenant(ctx, domain.CreateTenantRequest{
		Name:        "Toggle Co",
		DatabaseDSN: "file:toggle_co?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	updated, err := svc.SetTenantActive(ctx, tenant.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = svc.SetTenantActive(ctx, tenant.ID.String(), true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

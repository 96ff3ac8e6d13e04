package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	tenantrepo "github.com/orbitcrm/orbitcrm/internal/tenant/repository"
	"github.com/orbitcrm/orbitcrm/internal/tenant/routing"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	platform *gorm.DB
	node     *snowflake.Node
	engines  *routing.EngineCache
	repo     domain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	platform, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, platform.AutoMigrate(&domain.Tenant{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	engines := routing.NewEngineCache(db.Config{}, zap.NewNop())
	t.Cleanup(engines.Close)

	return &fixture{
		platform: platform,
		node:     node,
		engines:  engines,
		repo:     tenantrepo.Provide(),
	}
}

func (f *fixture) addTenant(t *testing.T, slug, dsn string, active bool) domain.Tenant {
	t.Helper()
	tenant := domain.Tenant{
		ID:          f.node.Generate(),
		Slug:        slug,
		Name:        slug,
		DatabaseDSN: dsn,
		IsActive:    active,
	}
	require.NoError(t, f.platform.Create(&tenant).Error)
	return tenant
}

func (f *fixture) router(cfg config.Config) (*gin.Engine, *tenantctx.TenantContext, *bool) {
	mw := routing.NewMiddleware(routing.MiddlewareParams{
		Platform: f.platform,
		Cfg:      cfg,
		Log:      zap.NewNop(),
		Repo:     f.repo,
		Engines:  f.engines,
	})

	var captured tenantctx.TenantContext
	handled := false
	r := gin.New()
	r.Use(mw.Handler())
	handle := func(c *gin.Context) {
		handled = true
		if tc, ok := tenantctx.From(c.Request.Context()); ok {
			captured = tc
		}
		c.Status(http.StatusOK)
	}
	r.GET("/quotes", handle)
	r.GET("/platform/tenants", handle)
	return r, &captured, &handled
}

func serve(r *gin.Engine, host, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_BindsTenantFromSubdomain(t *testing.T) {
	f := newFixture(t)
	tenant := f.addTenant(t, "acme", "file:acme_routing?mode=memory&cache=shared", true)
	r, captured, _ := f.router(config.Config{BaseDomain: "orbitcrm.test"})

	w := serve(r, "acme.orbitcrm.test", "/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenant.ID, captured.TenantID)
	assert.Equal(t, "acme", captured.Slug)
	assert.NotNil(t, captured.DB)
}

func TestMiddleware_UnknownSubdomainContinuesUnbound(t *testing.T) {
	f := newFixture(t)
	r, captured, handled := f.router(config.Config{BaseDomain: "orbitcrm.test"})

	w := serve(r, "ghost.orbitcrm.test", "/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handled)
	assert.Zero(t, captured.TenantID, "no tenant may be bound")
}

func TestMiddleware_InactiveTenantContinuesUnbound(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "dormant", "", false)
	r, captured, handled := f.router(config.Config{BaseDomain: "orbitcrm.test"})

	w := serve(r, "dormant.orbitcrm.test", "/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handled)
	assert.Zero(t, captured.TenantID)
}

func TestMiddleware_PlatformOnlyModeIsValid(t *testing.T) {
	f := newFixture(t)
	r, captured, handled := f.router(config.Config{BaseDomain: "orbitcrm.test"})

	w := serve(r, "orbitcrm.test", "/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handled)
	assert.Zero(t, captured.TenantID, "no tenant may be bound")
}

func TestMiddleware_DefaultSlugFallback(t *testing.T) {
	f := newFixture(t)
	tenant := f.addTenant(t, "main", "file:main_routing?mode=memory&cache=shared", true)
	r, captured, _ := f.router(config.Config{BaseDomain: "orbitcrm.test", DefaultTenantSlug: "main"})

	w := serve(r, "orbitcrm.test", "/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenant.ID, captured.TenantID)
}

func TestMiddleware_MissingDefaultContinuesUnbound(t *testing.T) {
	f := newFixture(t)
	r, captured, handled := f.router(config.Config{BaseDomain: "orbitcrm.test", DefaultTenantSlug: "gone"})

	w := serve(r, "orbitcrm.test", "/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handled)
	assert.Zero(t, captured.TenantID)
}

func TestMiddleware_PlatformPathsBypassResolution(t *testing.T) {
	f := newFixture(t)
	r, captured, handled := f.router(config.Config{BaseDomain: "orbitcrm.test"})

	// Platform paths skip tenant resolution entirely, whatever the host.
	w := serve(r, "ghost.orbitcrm.test", "/platform/tenants")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handled)
	assert.Zero(t, captured.TenantID)
}

func TestEngineCache_ReusesAndRecyclesHandles(t *testing.T) {
	f := newFixture(t)
	tenant := f.addTenant(t, "acme", "file:acme_cache1?mode=memory&cache=shared", true)

	first, err := f.engines.Get(&tenant)
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := f.engines.Get(&tenant)
	require.NoError(t, err)
	assert.Same(t, first, again, "unchanged DSN must reuse the pooled handle")

	tenant.DatabaseDSN = "file:acme_cache2?mode=memory&cache=shared"
	rotated, err := f.engines.Get(&tenant)
	require.NoError(t, err)
	assert.NotSame(t, first, rotated, "rotated DSN must reopen the engine")
}

func TestEngineCache_EmptyDSNSharesDefaultBind(t *testing.T) {
	f := newFixture(t)
	tenant := f.addTenant(t, "shared", "", true)

	engine, err := f.engines.Get(&tenant)
	require.NoError(t, err)
	assert.Nil(t, engine)
}

package routing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bypassPrefixes never bind a tenant: platform administration, static assets,
// and operational endpoints run against the platform database only.
var bypassPrefixes = []string{"/platform", "/static", "/metrics", "/health"}

type MiddlewareParams struct {
	fx.In

	Platform *gorm.DB `name:"platform"`
	Cfg      config.Config
	Log      *zap.Logger
	Repo     domain.Repository
	Engines  *EngineCache
}

// Middleware resolves the request's tenant from the host subdomain and binds
// its database engine into the request context.
type Middleware struct {
	platform *gorm.DB
	cfg      config.Config
	log      *zap.Logger
	repo     domain.Repository
	engines  *EngineCache
}

func NewMiddleware(p MiddlewareParams) *Middleware {
	return &Middleware{
		platform: p.Platform,
		cfg:      p.Cfg,
		log:      p.Log.Named("tenant.routing"),
		repo:     p.Repo,
		engines:  p.Engines,
	}
}

func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bypassed(c.Request.URL.Path) {
			c.Next()
			return
		}

		slug := ExtractSlug(c.Request.Host, m.cfg.BaseDomain)
		if slug == "" {
			slug = m.cfg.DefaultTenantSlug
		}
		if slug == "" {
			// Platform-only deployment: no subdomain, no default. Requests
			// run against the process default bind.
			c.Next()
			return
		}

		tenant, err := m.repo.FindBySlug(c.Request.Context(), m.platform, slug)
		if err != nil {
			m.log.Error("tenant lookup failed", zap.String("slug", slug), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "tenant_unavailable"})
			return
		}
		if tenant == nil || !tenant.IsActive {
			// No active registry row for the slug. Not fatal: continue
			// unbound against the process default bind rather than take the
			// host down.
			m.log.Warn("tenant not resolved", zap.String("slug", slug))
			c.Next()
			return
		}

		engine, err := m.engines.Get(tenant)
		if err != nil {
			m.log.Error("tenant engine open failed", zap.String("slug", tenant.Slug), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "tenant_unavailable"})
			return
		}

		ctx := tenantctx.With(c.Request.Context(), tenantctx.TenantContext{
			TenantID: tenant.ID,
			Slug:     tenant.Slug,
			Name:     tenant.Name,
			DB:       engine,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bypassed(path string) bool {
	for _, prefix := range bypassPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

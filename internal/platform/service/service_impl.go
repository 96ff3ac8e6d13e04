package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/orbitcrm/orbitcrm/internal/migration"
	"github.com/orbitcrm/orbitcrm/internal/platform/domain"
	"github.com/orbitcrm/orbitcrm/internal/seed"
	tenantdomain "github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	"github.com/orbitcrm/orbitcrm/internal/tenant/routing"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Platform *gorm.DB `name:"platform"`
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     tenantdomain.Repository
	Engines  *routing.EngineCache
}

type Service struct {
	platform *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     tenantdomain.Repository
	engines  *routing.EngineCache
}

func New(p Params) domain.Service {
	return &Service{
		platform: p.Platform,
		log:      p.Log.Named("platform.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		engines:  p.Engines,
	}
}

func (s *Service) CreateTenant(ctx context.Context, req domain.CreateTenantRequest) (tenantdomain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return tenantdomain.Tenant{}, domain.ErrInvalidTenant
	}
	slugValue := req.Slug
	if slugValue == "" {
		slugValue = name
	}
	slugValue = slug.Make(slugValue)
	if slugValue == "" {
		return tenantdomain.Tenant{}, domain.ErrInvalidTenant
	}

	existing, err := s.repo.FindBySlug(ctx, s.platform, slugValue)
	if err != nil {
		return tenantdomain.Tenant{}, err
	}
	if existing != nil {
		return tenantdomain.Tenant{}, tenantdomain.ErrSlugTaken
	}

	dsn := strings.TrimSpace(req.DatabaseDSN)
	if dsn != "" {
		if _, err := db.DialectFromDSN(dsn); err != nil {
			return tenantdomain.Tenant{}, tenantdomain.ErrInvalidDSN
		}
	}

	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:          s.genID.Generate(),
		Slug:        slugValue,
		Name:        name,
		DatabaseDSN: dsn,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.platform, &tenant); err != nil {
		return tenantdomain.Tenant{}, err
	}

	if err := s.provision(&tenant, req); err != nil {
		s.log.Error("tenant provisioning failed", zap.String("slug", tenant.Slug), zap.Error(err))
		return tenantdomain.Tenant{}, err
	}

	s.log.Info("tenant created", zap.String("slug", tenant.Slug))
	return tenant, nil
}

// provision brings the tenant's database to the current schema and seeds its
// vocabulary, roles, and first admin. Tenants without a dedicated DSN share
// the default bind, which is migrated and seeded at startup.
func (s *Service) provision(tenant *tenantdomain.Tenant, req domain.CreateTenantRequest) error {
	engine, err := s.engines.Get(tenant)
	if err != nil {
		return err
	}
	if engine == nil {
		return nil
	}

	if err := migration.TenantSchema(engine); err != nil {
		return err
	}
	if err := seed.EnsureTenantDefaults(engine, s.genID); err != nil {
		return err
	}
	if req.AdminEmail != "" && req.AdminPassword != "" {
		adminName := strings.TrimSpace(req.AdminName)
		if adminName == "" {
			adminName = tenant.Name + " Admin"
		}
		return seed.EnsureTenantAdmin(engine, s.genID, adminName, req.AdminEmail, req.AdminPassword)
	}
	return nil
}

func (s *Service) ListTenants(ctx context.Context) ([]tenantdomain.Tenant, error) {
	return s.repo.List(ctx, s.platform)
}

func (s *Service) SetTenantActive(ctx context.Context, id string, active bool) (tenantdomain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return tenantdomain.Tenant{}, domain.ErrInvalidTenant
	}

	tenant, err := s.repo.FindByID(ctx, s.platform, tenantID)
	if err != nil {
		return tenantdomain.Tenant{}, err
	}
	if tenant == nil {
		return tenantdomain.Tenant{}, tenantdomain.ErrNotFound
	}

	tenant.IsActive = active
	tenant.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, s.platform, tenant); err != nil {
		return tenantdomain.Tenant{}, err
	}
	if !active {
		s.engines.Evict(tenant.ID)
	}
	return *tenant, nil
}

package routing

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type engineEntry struct {
	dsn string
	db  *gorm.DB
}

// EngineCache holds one pooled gorm handle per tenant database, keyed by
// tenant id. Handles are opened lazily on first use and recycled when the
// registry's DSN for the tenant changes.
type EngineCache struct {
	mu      sync.Mutex
	cfg     db.Config
	log     *zap.Logger
	engines map[snowflake.ID]*engineEntry
}

func NewEngineCache(cfg db.Config, log *zap.Logger) *EngineCache {
	return &EngineCache{
		cfg:     cfg,
		log:     log.Named("tenant.engines"),
		engines: make(map[snowflake.ID]*engineEntry),
	}
}

// Get returns the engine for the tenant, opening or reopening as needed.
// Tenants without a DSN share the default bind and get nil.
func (c *EngineCache) Get(tenant *domain.Tenant) (*gorm.DB, error) {
	if tenant == nil || tenant.DatabaseDSN == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.engines[tenant.ID]; ok {
		if entry.dsn == tenant.DatabaseDSN {
			return entry.db, nil
		}
		// DSN rotated: drop the stale handle before opening the new one.
		if err := db.Close(entry.db); err != nil {
			c.log.Warn("closing stale tenant engine", zap.String("slug", tenant.Slug), zap.Error(err))
		}
		delete(c.engines, tenant.ID)
	}

	dialector, err := db.DialectFromDSN(tenant.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	engine, err := db.Open(dialector, c.cfg)
	if err != nil {
		return nil, err
	}
	c.engines[tenant.ID] = &engineEntry{dsn: tenant.DatabaseDSN, db: engine}
	c.log.Info("tenant engine opened", zap.String("slug", tenant.Slug))
	return engine, nil
}

// Evict drops the tenant's engine, closing its pool.
func (c *EngineCache) Evict(tenantID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.engines[tenantID]; ok {
		_ = db.Close(entry.db)
		delete(c.engines, tenantID)
	}
}

// Close shuts down every cached engine.
func (c *EngineCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.engines {
		_ = db.Close(entry.db)
		delete(c.engines, id)
	}
}

package tenant

import (
	"context"

	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/internal/tenant/repository"
	"github.com/orbitcrm/orbitcrm/internal/tenant/routing"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideEngineCache(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *routing.EngineCache {
	cache := routing.NewEngineCache(db.ConfigFrom(cfg.DB), log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cache.Close()
			return nil
		},
	})
	return cache
}

var Module = fx.Module("tenant",
	fx.Provide(
		repository.Provide,
		provideEngineCache,
		routing.NewMiddleware,
	),
)

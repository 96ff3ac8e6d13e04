package db

import (
	"context"

	"github.com/orbitcrm/orbitcrm/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Result struct {
	fx.Out

	// Default is the process default bind, used when a request carries no
	// resolved tenant (single-tenant and dev deployments).
	Default *gorm.DB

	// Platform is the registry bind. Tenant and platform-admin rows live here
	// and are never reachable through a tenant engine.
	Platform *gorm.DB `name:"platform"`
}

// ConfigFrom maps the loaded settings onto a bind config. internal/config
// stays free of pkg/db so the dependency runs one way only.
func ConfigFrom(settings config.Database) Config {
	return Config{
		Type:            settings.Type,
		Host:            settings.Host,
		Port:            settings.Port,
		Name:            settings.Name,
		User:            settings.User,
		Password:        settings.Password,
		SSLMode:         settings.SSLMode,
		MaxIdleConn:     settings.MaxIdleConn,
		MaxOpenConn:     settings.MaxOpenConn,
		ConnMaxLifetime: settings.ConnMaxLifetime,
		ConnMaxIdleTime: settings.ConnMaxIdleTime,
	}
}

func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Result, error) {
	defaultDB, err := open(ConfigFrom(cfg.DB))
	if err != nil {
		return Result{}, err
	}

	platformDB := defaultDB
	if cfg.PlatformDB.Name != "" && cfg.PlatformDB != cfg.DB {
		platformDB, err = open(ConfigFrom(cfg.PlatformDB))
		if err != nil {
			return Result{}, err
		}
	}

	log.Info("database binds ready",
		zap.String("default", cfg.DB.Name),
		zap.String("platform", cfg.PlatformDB.Name),
	)

	handles := []*gorm.DB{defaultDB}
	if platformDB != defaultDB {
		handles = append(handles, platformDB)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			for _, h := range handles {
				if err := Close(h); err != nil {
					return err
				}
			}
			return nil
		},
	})

	return Result{Default: defaultDB, Platform: platformDB}, nil
}

func open(bind Config) (*gorm.DB, error) {
	dialector, err := Dialect(bind)
	if err != nil {
		return nil, err
	}
	return Open(dialector, bind)
}

var Module = fx.Module("db",
	fx.Provide(Provide),
)

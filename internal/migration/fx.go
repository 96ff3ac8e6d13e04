package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Default  *gorm.DB
	Platform *gorm.DB `name:"platform"`
	Node     *snowflake.Node
	Cfg      config.Config
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p Params) error {
		if err := PlatformSchema(p.Platform); err != nil {
			return err
		}
		if err := TenantSchema(p.Default); err != nil {
			return err
		}

		if !p.Cfg.BootstrapDefaults {
			return nil
		}
		if err := seed.EnsurePlatformAdmin(p.Platform, p.Node); err != nil {
			return err
		}
		return seed.EnsureDefaults(p.Default, p.Node)
	}),
)

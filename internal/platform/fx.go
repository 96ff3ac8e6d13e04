package platform

import (
	"github.com/orbitcrm/orbitcrm/internal/platform/service"
	"go.uber.org/fx"
)

var Module = fx.Module("platform",
	fx.Provide(service.New),
)

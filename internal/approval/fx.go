package approval

import (
	"github.com/orbitcrm/orbitcrm/internal/approval/repository"
	"github.com/orbitcrm/orbitcrm/internal/approval/service"
	"go.uber.org/fx"
)

var Module = fx.Module("approval",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)

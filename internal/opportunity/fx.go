package opportunity

import (
	"github.com/orbitcrm/orbitcrm/internal/opportunity/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("opportunity",
	fx.Provide(repository.Provide),
)

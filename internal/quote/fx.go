package quote

import (
	"github.com/orbitcrm/orbitcrm/internal/quote/repository"
	"github.com/orbitcrm/orbitcrm/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)

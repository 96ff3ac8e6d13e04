package payment

import (
	"github.com/orbitcrm/orbitcrm/internal/payment/repository"
	"github.com/orbitcrm/orbitcrm/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)

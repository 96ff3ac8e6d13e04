package company

import (
	"github.com/orbitcrm/orbitcrm/internal/company/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("company",
	fx.Provide(repository.Provide),
)

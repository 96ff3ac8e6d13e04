package auth

import (
	"github.com/orbitcrm/orbitcrm/internal/auth/repository"
	"github.com/orbitcrm/orbitcrm/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

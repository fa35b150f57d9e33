package auth

import (
	"github.com/opennoc/fiberplant/internal/auth/repository"
	"github.com/opennoc/fiberplant/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(BootstrapAdmin),
)

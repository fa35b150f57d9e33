package deployment

import (
	"github.com/opennoc/fiberplant/internal/deployment/repository"
	"github.com/opennoc/fiberplant/internal/deployment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("deployment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

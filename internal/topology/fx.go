package topology

import (
	"github.com/opennoc/fiberplant/internal/topology/repository"
	"github.com/opennoc/fiberplant/internal/topology/service"
	"go.uber.org/fx"
)

var Module = fx.Module("topology.service",
	fx.Provide(repository.Provide, service.New),
)

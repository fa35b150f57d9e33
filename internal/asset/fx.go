package asset

import (
	"github.com/opennoc/fiberplant/internal/asset/repository"
	"github.com/opennoc/fiberplant/internal/asset/service"
	"go.uber.org/fx"
)

var Module = fx.Module("asset.service",
	fx.Provide(repository.Provide, service.New),
)

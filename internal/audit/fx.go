package audit

import (
	"github.com/opennoc/fiberplant/internal/audit/repository"
	"github.com/opennoc/fiberplant/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

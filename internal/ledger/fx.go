package ledger

import (
	"github.com/opennoc/fiberplant/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.New),
)

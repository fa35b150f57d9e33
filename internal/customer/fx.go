package customer

import (
	"github.com/opennoc/fiberplant/internal/customer/repository"
	"github.com/opennoc/fiberplant/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide, service.New),
)

package seed

import (
	"github.com/opennoc/fiberplant/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if !cfg.SeedDemoData {
			return nil
		}
		return EnsureDemoData(conn)
	}),
)

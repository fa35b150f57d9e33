package migration

import (
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	authdomain "github.com/opennoc/fiberplant/internal/auth/domain"
	"github.com/opennoc/fiberplant/internal/config"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	deploymentdomain "github.com/opennoc/fiberplant/internal/deployment/domain"
	ledgerdomain "github.com/opennoc/fiberplant/internal/ledger/domain"
	topologydomain "github.com/opennoc/fiberplant/internal/topology/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// The partial unique port index only exists on postgres; other
			// dialects rely on the splitter lock alone.
			return conn.AutoMigrate(
				&topologydomain.Headend{},
				&topologydomain.FDH{},
				&topologydomain.Splitter{},
				&customerdomain.Customer{},
				&topologydomain.FiberDropLine{},
				&assetdomain.Asset{},
				&ledgerdomain.AssignmentRecord{},
				&deploymentdomain.Technician{},
				&deploymentdomain.DeploymentTask{},
				&auditdomain.AuditEntry{},
				&authdomain.User{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

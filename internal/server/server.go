package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/opennoc/fiberplant/internal/asset"
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
	"github.com/opennoc/fiberplant/internal/audit"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	"github.com/opennoc/fiberplant/internal/auth"
	authdomain "github.com/opennoc/fiberplant/internal/auth/domain"
	"github.com/opennoc/fiberplant/internal/authorization"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/internal/config"
	"github.com/opennoc/fiberplant/internal/customer"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	"github.com/opennoc/fiberplant/internal/deployment"
	deploymentdomain "github.com/opennoc/fiberplant/internal/deployment/domain"
	"github.com/opennoc/fiberplant/internal/ledger"
	ledgerdomain "github.com/opennoc/fiberplant/internal/ledger/domain"
	"github.com/opennoc/fiberplant/internal/lifecycle"
	lifecycledomain "github.com/opennoc/fiberplant/internal/lifecycle/domain"
	obslogger "github.com/opennoc/fiberplant/internal/observability/logger"
	obsmetrics "github.com/opennoc/fiberplant/internal/observability/metrics"
	"github.com/opennoc/fiberplant/internal/ports"
	"github.com/opennoc/fiberplant/internal/topology"
	topologydomain "github.com/opennoc/fiberplant/internal/topology/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	clock.Module,
	obsmetrics.Module,
	fx.Provide(NewEngine),
	audit.Module,
	auth.Module,
	authorization.Module,
	topology.Module,
	asset.Module,
	customer.Module,
	ledger.Module,
	ports.Module,
	lifecycle.Module,
	deployment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	authSvc       authdomain.Service
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	topologySvc   topologydomain.Service
	assetSvc      assetdomain.Service
	customerSvc   customerdomain.Service
	lifecycleSvc  lifecycledomain.Service
	deploymentSvc deploymentdomain.Service
	ledgerSvc     ledgerdomain.Service
	portsMgr      *ports.Manager
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	AuthSvc       authdomain.Service
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	TopologySvc   topologydomain.Service
	AssetSvc      assetdomain.Service
	CustomerSvc   customerdomain.Service
	LifecycleSvc  lifecycledomain.Service
	DeploymentSvc deploymentdomain.Service
	LedgerSvc     ledgerdomain.Service
	PortsMgr      *ports.Manager
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		authSvc:       p.AuthSvc,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		topologySvc:   p.TopologySvc,
		assetSvc:      p.AssetSvc,
		customerSvc:   p.CustomerSvc,
		lifecycleSvc:  p.LifecycleSvc,
		deploymentSvc: p.DeploymentSvc,
		ledgerSvc:     p.LedgerSvc,
		portsMgr:      p.PortsMgr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.POST("/v1/auth/login", s.Login)

	v1 := r.Group("/v1", auth.Authenticate(s.authSvc))
	require := func(object, action string) gin.HandlerFunc {
		return authorization.Require(s.authzSvc, object, action)
	}

	users := v1.Group("/users", require(authorization.ObjectUser, authorization.ActionUserManage))
	{
		users.POST("", s.CreateUser)
		users.GET("", s.ListUsers)
	}

	v1.POST("/headends", require(authorization.ObjectTopology, authorization.ActionTopologyCreate), s.CreateHeadend)
	v1.GET("/headends", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.ListHeadends)
	v1.POST("/fdhs", require(authorization.ObjectTopology, authorization.ActionTopologyCreate), s.CreateFDH)
	v1.GET("/fdhs", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.ListFDHs)
	v1.GET("/fdhs/:id/topology", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.HubTopology)
	v1.POST("/splitters", require(authorization.ObjectTopology, authorization.ActionTopologyCreate), s.CreateSplitter)
	v1.GET("/splitters", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.ListSplitters)
	v1.GET("/splitters/:id", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.GetSplitter)
	v1.GET("/splitters/:id/available-ports", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.AvailablePorts)
	v1.GET("/devices/search", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.SearchDevice)

	v1.POST("/assets", require(authorization.ObjectAsset, authorization.ActionAssetCreate), s.CreateAsset)
	v1.GET("/assets", require(authorization.ObjectAsset, authorization.ActionAssetView), s.ListAssets)
	v1.GET("/assets/:id", require(authorization.ObjectAsset, authorization.ActionAssetView), s.GetAsset)
	v1.PATCH("/assets/:id", require(authorization.ObjectAsset, authorization.ActionAssetUpdate), s.UpdateAsset)
	v1.DELETE("/assets/:id", require(authorization.ObjectAsset, authorization.ActionAssetDelete), s.DeleteAsset)
	v1.GET("/assets/:id/lifecycle", require(authorization.ObjectAsset, authorization.ActionAssetView), s.AssetLifecycle)
	v1.GET("/stats/utilization", require(authorization.ObjectAsset, authorization.ActionAssetView), s.UtilizationStats)
	v1.GET("/stats/maintenance-due", require(authorization.ObjectAsset, authorization.ActionAssetView), s.MaintenanceDue)
	v1.GET("/stats/summary", require(authorization.ObjectAsset, authorization.ActionAssetView), s.DashboardSummary)

	v1.POST("/customers", require(authorization.ObjectCustomer, authorization.ActionCustomerCreate), s.CreateCustomer)
	v1.GET("/customers", require(authorization.ObjectCustomer, authorization.ActionCustomerView), s.ListCustomers)
	v1.GET("/customers/:id", require(authorization.ObjectCustomer, authorization.ActionCustomerView), s.GetCustomer)
	v1.PATCH("/customers/:id", require(authorization.ObjectCustomer, authorization.ActionCustomerUpdate), s.UpdateCustomer)
	v1.GET("/customers/:id/topology", require(authorization.ObjectTopology, authorization.ActionTopologyView), s.CustomerTopology)
	v1.GET("/customers/:id/history", require(authorization.ObjectCustomer, authorization.ActionCustomerView), s.CustomerHistory)

	v1.POST("/lifecycle/onboard", require(authorization.ObjectLifecycle, authorization.ActionLifecycleOnboard), s.Onboard)
	v1.POST("/lifecycle/replace-faulty", require(authorization.ObjectLifecycle, authorization.ActionLifecycleAssign), s.ReplaceFaultyAsset)
	v1.POST("/lifecycle/bulk-reclaim", require(authorization.ObjectLifecycle, authorization.ActionLifecycleReclaim), s.BulkReclaim)
	v1.POST("/customers/:id/assets", require(authorization.ObjectLifecycle, authorization.ActionLifecycleAssign), s.AssignAssets)
	v1.POST("/customers/:id/reclaim", require(authorization.ObjectLifecycle, authorization.ActionLifecycleReclaim), s.ReclaimCustomerAssets)
	v1.POST("/customers/:id/deactivate", require(authorization.ObjectLifecycle, authorization.ActionLifecycleReclaim), s.DeactivateCustomer)
	v1.POST("/customers/:id/activate", require(authorization.ObjectLifecycle, authorization.ActionLifecycleAssign), s.ActivateCustomer)
	v1.DELETE("/customers/:id", require(authorization.ObjectLifecycle, authorization.ActionLifecyclePurge), s.PurgeCustomer)
	v1.POST("/assets/:id/reassign", require(authorization.ObjectLifecycle, authorization.ActionLifecycleAssign), s.ReassignAsset)
	v1.POST("/assets/:id/retire", require(authorization.ObjectLifecycle, authorization.ActionLifecycleRetire), s.RetireAsset)

	v1.POST("/technicians", require(authorization.ObjectDeployment, authorization.ActionDeploymentCreate), s.CreateTechnician)
	v1.GET("/technicians", require(authorization.ObjectDeployment, authorization.ActionDeploymentView), s.ListTechnicians)
	v1.POST("/deployments", require(authorization.ObjectDeployment, authorization.ActionDeploymentCreate), s.CreateDeploymentTask)
	v1.GET("/deployments", require(authorization.ObjectDeployment, authorization.ActionDeploymentView), s.ListDeploymentTasks)
	v1.GET("/deployments/:id", require(authorization.ObjectDeployment, authorization.ActionDeploymentView), s.GetDeploymentTask)
	v1.PATCH("/deployments/:id/status", require(authorization.ObjectDeployment, authorization.ActionDeploymentUpdate), s.UpdateDeploymentTaskStatus)

	v1.GET("/audit-logs", require(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}

// parseID parses a path or query snowflake id.
func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// actorFrom resolves the audit actor label for the current request.
func actorFrom(c *gin.Context) string {
	if claims, ok := auth.ClaimsFromContext(c); ok {
		return claims.Username
	}
	return "system"
}

package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	authdomain "github.com/opennoc/fiberplant/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTopology   = "topology"
	ObjectAsset      = "asset"
	ObjectCustomer   = "customer"
	ObjectLifecycle  = "lifecycle"
	ObjectDeployment = "deployment"
	ObjectAuditLog   = "audit_log"
	ObjectUser       = "user"
)

const (
	ActionTopologyView   = "topology.view"
	ActionTopologyCreate = "topology.create"

	ActionAssetView   = "asset.view"
	ActionAssetCreate = "asset.create"
	ActionAssetUpdate = "asset.update"
	ActionAssetDelete = "asset.delete"

	ActionCustomerView   = "customer.view"
	ActionCustomerCreate = "customer.create"
	ActionCustomerUpdate = "customer.update"

	ActionLifecycleOnboard = "lifecycle.onboard"
	ActionLifecycleAssign  = "lifecycle.assign"
	ActionLifecycleReclaim = "lifecycle.reclaim"
	ActionLifecycleRetire  = "lifecycle.retire"
	ActionLifecyclePurge   = "lifecycle.purge"

	ActionDeploymentView   = "deployment.view"
	ActionDeploymentCreate = "deployment.create"
	ActionDeploymentUpdate = "deployment.update"

	ActionAuditLogView = "audit_log.view"

	ActionUserManage = "user.manage"
)

var (
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	Authorize(ctx context.Context, role authdomain.Role, object, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role authdomain.Role, object, action string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := roleSubject(role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, subject, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject, object, action string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(ctx, nil, subject, "authorization.denied", "authorization", object, map[string]any{
		"object": object,
		"action": action,
	})
}

func roleSubject(role authdomain.Role) string {
	return fmt.Sprintf("role:%s", strings.ToLower(string(role)))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Planner runs the plant: topology, inventory and every lifecycle
		// operation short of purge.
		{"role:planner", ObjectTopology, ActionTopologyView},
		{"role:planner", ObjectTopology, ActionTopologyCreate},
		{"role:planner", ObjectAsset, ActionAssetView},
		{"role:planner", ObjectAsset, ActionAssetCreate},
		{"role:planner", ObjectAsset, ActionAssetUpdate},
		{"role:planner", ObjectCustomer, ActionCustomerView},
		{"role:planner", ObjectCustomer, ActionCustomerCreate},
		{"role:planner", ObjectCustomer, ActionCustomerUpdate},
		{"role:planner", ObjectLifecycle, ActionLifecycleOnboard},
		{"role:planner", ObjectLifecycle, ActionLifecycleAssign},
		{"role:planner", ObjectLifecycle, ActionLifecycleReclaim},
		{"role:planner", ObjectLifecycle, ActionLifecycleRetire},
		{"role:planner", ObjectDeployment, ActionDeploymentView},
		{"role:planner", ObjectDeployment, ActionDeploymentCreate},

		// Technician works deployment tasks in the field.
		{"role:technician", ObjectTopology, ActionTopologyView},
		{"role:technician", ObjectAsset, ActionAssetView},
		{"role:technician", ObjectCustomer, ActionCustomerView},
		{"role:technician", ObjectDeployment, ActionDeploymentView},
		{"role:technician", ObjectDeployment, ActionDeploymentUpdate},
		{"role:technician", ObjectLifecycle, ActionLifecycleAssign},

		// Support can look things up and deactivate service.
		{"role:supportagent", ObjectTopology, ActionTopologyView},
		{"role:supportagent", ObjectAsset, ActionAssetView},
		{"role:supportagent", ObjectCustomer, ActionCustomerView},
		{"role:supportagent", ObjectCustomer, ActionCustomerUpdate},
		{"role:supportagent", ObjectLifecycle, ActionLifecycleReclaim},
		{"role:supportagent", ObjectDeployment, ActionDeploymentView},

		// Admin holds every permission plus purge and user management.
		{"role:admin", ObjectTopology, ActionTopologyView},
		{"role:admin", ObjectTopology, ActionTopologyCreate},
		{"role:admin", ObjectAsset, ActionAssetView},
		{"role:admin", ObjectAsset, ActionAssetCreate},
		{"role:admin", ObjectAsset, ActionAssetUpdate},
		{"role:admin", ObjectAsset, ActionAssetDelete},
		{"role:admin", ObjectCustomer, ActionCustomerView},
		{"role:admin", ObjectCustomer, ActionCustomerCreate},
		{"role:admin", ObjectCustomer, ActionCustomerUpdate},
		{"role:admin", ObjectLifecycle, ActionLifecycleOnboard},
		{"role:admin", ObjectLifecycle, ActionLifecycleAssign},
		{"role:admin", ObjectLifecycle, ActionLifecycleReclaim},
		{"role:admin", ObjectLifecycle, ActionLifecycleRetire},
		{"role:admin", ObjectLifecycle, ActionLifecyclePurge},
		{"role:admin", ObjectDeployment, ActionDeploymentView},
		{"role:admin", ObjectDeployment, ActionDeploymentCreate},
		{"role:admin", ObjectDeployment, ActionDeploymentUpdate},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},
		{"role:admin", ObjectUser, ActionUserManage},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

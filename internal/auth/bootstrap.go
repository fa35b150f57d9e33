package auth

import (
	"context"
	"errors"
	"os"

	"github.com/opennoc/fiberplant/internal/auth/domain"
	"github.com/opennoc/fiberplant/internal/config"
	"go.uber.org/zap"
)

// BootstrapAdmin creates the initial admin account when no user exists yet.
// The password comes from BOOTSTRAP_ADMIN_PASSWORD; without it the bootstrap
// is skipped so a misconfigured deploy never gets a default credential.
func BootstrapAdmin(cfg config.Config, svc domain.Service, log *zap.Logger) error {
	if !cfg.BootstrapAdmin {
		return nil
	}
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if password == "" {
		log.Named("auth.bootstrap").Info("no bootstrap password set, skipping admin bootstrap")
		return nil
	}

	ctx := context.Background()
	users, err := svc.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "admin",
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil && !errors.Is(err, domain.ErrUsernameTaken) {
		return err
	}
	log.Named("auth.bootstrap").Info("bootstrap admin user created")
	return nil
}

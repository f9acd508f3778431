package account

import (
	"context"

	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/logger"
)

// SeedConfig names the administrator created at startup.
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
}

// Seed makes sure the admin role exists and, when an admin username is
// configured, that this user exists and holds it. It runs in one
// transaction and is safe to repeat.
func Seed(ctx context.Context, db *database.DB, cfg SeedConfig, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	ctx, scope := db.NewScope(ctx)
	defer scope.Release()

	repo := NewRepository(db)
	role, err := ensureRole(ctx, repo)
	if err != nil {
		return err
	}

	if cfg.AdminUsername != "" {
		user, err := repo.FindUserByUsername(ctx, cfg.AdminUsername)
		if errors.Classify(err) == errors.KindResourceNotFound {
			user = &User{Username: cfg.AdminUsername, Email: cfg.AdminEmail}
			err = repo.CreateUser(ctx, user)
			if err == nil {
				log.Info("admin user created", logger.Fields("username", user.Username, "user_id", user.ID))
			}
		}
		if err != nil {
			return err
		}
		if err := repo.AssignRole(ctx, user, role); err != nil {
			return err
		}
	}

	return scope.Commit()
}

func ensureRole(ctx context.Context, repo *Repository) (*Role, error) {
	role, err := repo.FindRoleByName(ctx, AdminRole)
	if errors.Classify(err) != errors.KindResourceNotFound {
		return role, err
	}
	role = &Role{Name: AdminRole, Description: "Manages roles and role assignments"}
	if err := repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

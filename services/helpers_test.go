package services

import (
	"context"
	"testing"

	"panel-rbac/database"
	"panel-rbac/database/dbtest"
	"panel-rbac/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type staticEnabled []string

func (s staticEnabled) EnabledPlugins(context.Context) ([]string, error) { return s, nil }

type env struct {
	db      *gorm.DB
	perms   repositories.PermissionRepository
	roles   repositories.RoleRepository
	users   repositories.UserRepository
	plugins repositories.PluginRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)
	_, err := database.Seed(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return &env{
		db:      db,
		perms:   repositories.NewPermissionRepository(db),
		roles:   repositories.NewRoleRepository(db),
		users:   repositories.NewUserRepository(db),
		plugins: repositories.NewPluginRepository(db),
	}
}

func (e *env) permissionService(enabled ...string) PermissionService {
	return NewPermissionService(e.db, e.perms, e.roles, e.plugins, staticEnabled(enabled), zap.NewNop())
}

func (e *env) roleService() RoleService {
	return NewRoleService(e.db, e.roles, e.perms, zap.NewNop())
}

func (e *env) userRoleService() UserRoleService {
	return NewUserRoleService(e.users, e.roles, zap.NewNop())
}

func ptr(s string) *string { return &s }

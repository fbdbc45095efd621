package plugins

import (
	"context"
	"testing"

	"panel-rbac/database"
	"panel-rbac/database/dbtest"
	"panel-rbac/repositories"
	"panel-rbac/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	plugins repositories.PluginRepository
	roles   repositories.RoleRepository
	perms   services.PermissionService
	cache   *EnabledPluginCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.New(t)
	_, err := database.Seed(ctx, db, zap.NewNop())
	require.NoError(t, err)

	f := &fixture{
		db:      db,
		plugins: repositories.NewPluginRepository(db),
		roles:   repositories.NewRoleRepository(db),
	}
	f.cache = NewEnabledPluginCache(t.TempDir(), f.plugins, zap.NewNop(), nil)
	f.perms = services.NewPermissionService(db, repositories.NewPermissionRepository(db), f.roles, f.plugins, f.cache, zap.NewNop())
	return f
}

// stubPlugins serves a fixed enabled list or a fixed error.
type stubPlugins struct {
	repositories.PluginRepository
	enabled []string
	err     error
}

func (s *stubPlugins) FindEnabledNames(context.Context) ([]string, error) {
	return s.enabled, s.err
}

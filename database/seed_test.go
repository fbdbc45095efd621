package database_test

import (
	"context"
	"testing"

	"panel-rbac/database"
	"panel-rbac/database/dbtest"
	"panel-rbac/models"
	"panel-rbac/permissions"
	"panel-rbac/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("installs the full catalog and system roles", func(t *testing.T) {
		db := dbtest.New(t)
		res, err := database.Seed(ctx, db, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, 84, res.PermissionsCreated)
		assert.Equal(t, 2, res.RolesCreated)

		perms := repositories.NewPermissionRepository(db)
		for _, code := range permissions.AllCodes() {
			p, err := perms.FindByCode(ctx, string(code))
			require.NoError(t, err, code)
			assert.True(t, p.IsSystem, code)
			assert.Nil(t, p.PluginName, code)
		}

		p, err := perms.FindByCode(ctx, "edit_user")
		require.NoError(t, err)
		assert.Equal(t, "user_management (admin)", p.Section)
		require.NotNil(t, p.Description)
		assert.Equal(t, "Edit user account details and roles (admin)", *p.Description)

		roles := repositories.NewRoleRepository(db)
		admin, err := roles.FindByName(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, admin.IsSystem)
		assert.Equal(t, "Administrator", admin.DisplayName)
		assert.Len(t, admin.Permissions, 84)

		user, err := roles.FindByName(ctx, models.RoleUser)
		require.NoError(t, err)
		assert.ElementsMatch(t, permissions.Strings(permissions.StandardUserCodes()), user.PermissionCodes())
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := dbtest.New(t)
		_, err := database.Seed(ctx, db, zap.NewNop())
		require.NoError(t, err)

		res, err := database.Seed(ctx, db, zap.NewNop())
		require.NoError(t, err)
		assert.Zero(t, res.PermissionsCreated)
		assert.Zero(t, res.RolesCreated)

		var n int64
		require.NoError(t, db.Model(&models.Permission{}).Count(&n).Error)
		assert.Equal(t, int64(84), n)
		require.NoError(t, db.Table("role_permission").Count(&n).Error)
		assert.Equal(t, int64(84+12), n)
	})

	t.Run("leaves edited system roles alone", func(t *testing.T) {
		db := dbtest.New(t)
		_, err := database.Seed(ctx, db, zap.NewNop())
		require.NoError(t, err)

		roles := repositories.NewRoleRepository(db)
		user, err := roles.FindByName(ctx, models.RoleUser)
		require.NoError(t, err)
		keep := []models.Permission{user.Permissions[0]}
		require.NoError(t, roles.ReplacePermissions(ctx, user, keep))

		_, err = database.Seed(ctx, db, zap.NewNop())
		require.NoError(t, err)
		user, err = roles.FindByName(ctx, models.RoleUser)
		require.NoError(t, err)
		assert.Len(t, user.Permissions, 1)
	})
}

package repositories

import (
	"context"
	"testing"

	"panel-rbac/database/dbtest"
	"panel-rbac/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("legacy roles round trip as JSON", func(t *testing.T) {
		db := dbtest.New(t)
		repo := NewUserRepository(db)

		u := &models.User{Username: "legacy", Password: "x", LegacyRoles: []string{"ROLE_ADMIN"}}
		require.NoError(t, repo.Create(ctx, u))

		loaded, err := repo.FindByUsername(ctx, "legacy")
		require.NoError(t, err)
		assert.True(t, loaded.HasLegacyRole("ROLE_ADMIN"))
	})

	t.Run("FindByIDWithRoles loads the permission graph", func(t *testing.T) {
		db := dbtest.New(t)
		seedPermissions(t, db)
		repo := NewUserRepository(db)
		roles := NewRoleRepository(db)
		perms := NewPermissionRepository(db)

		set, err := perms.FindByCodes(ctx, []string{"view_user"})
		require.NoError(t, err)
		role := &models.Role{Name: "support", DisplayName: "Support", Permissions: set}
		require.NoError(t, roles.Create(ctx, role))
		u := &models.User{Username: "carol", Password: "x"}
		require.NoError(t, repo.Create(ctx, u))
		require.NoError(t, repo.ReplaceRoles(ctx, u, []models.Role{*role}))

		loaded, err := repo.FindByIDWithRoles(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Roles, 1)
		assert.True(t, loaded.Roles[0].HasPermissionCode("view_user"))

		require.NoError(t, repo.RemoveRole(ctx, loaded, role))
		loaded, err = repo.FindByIDWithRoles(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Roles)
	})

	t.Run("FindAllForBackfill visits every user", func(t *testing.T) {
		db := dbtest.New(t)
		repo := NewUserRepository(db)
		for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
			require.NoError(t, repo.Create(ctx, &models.User{Username: name, Password: "x"}))
		}

		var seen []string
		err := repo.FindAllForBackfill(ctx, 2, func(batch []models.User) error {
			for _, u := range batch {
				seen = append(seen, u.Username)
			}
			return nil
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"u1", "u2", "u3", "u4", "u5"}, seen)
	})
}

func TestPluginRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewPluginRepository(db)

	require.NoError(t, repo.SetEnabled(ctx, "backups", true))
	require.NoError(t, repo.SetEnabled(ctx, "tickets", false))

	enabled, err := repo.FindEnabledNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"backups"}, enabled)

	require.NoError(t, repo.SetEnabled(ctx, "tickets", true))
	require.NoError(t, repo.SetEnabled(ctx, "backups", false))
	enabled, err = repo.FindEnabledNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tickets"}, enabled)

	installed, err := repo.FindInstalledNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"backups", "tickets"}, installed)

	require.NoError(t, repo.Remove(ctx, "backups"))
	installed, err = repo.FindInstalledNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tickets"}, installed)
}

package plugins

import (
	"context"
	"errors"
	"testing"

	"panel-rbac/apperrors"
	"panel-rbac/auth"
	"panel-rbac/models"
	"panel-rbac/repositories"
	"panel-rbac/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingSync struct {
	services.PermissionService
}

func (failingSync) SyncPluginPermissions(context.Context, string, map[string]services.Declaration) (services.SyncResult, error) {
	return services.SyncResult{}, errors.New("deadlock found")
}

func TestCoordinator(t *testing.T) {
	ctx := context.Background()
	declared := map[string]services.Declaration{
		"PLUGIN_BILLING_VIEW":   {Name: "View Billing", Description: "See invoices"},
		"PLUGIN_BILLING_REFUND": {Name: "Refund"},
		"edit_user":             {Name: "Hijack"},
		"PLUGIN_OTHER_THING":    {Name: "Not mine"},
	}

	t.Run("sync stores namespaced codes and rejects the rest", func(t *testing.T) {
		f := newFixture(t)
		c := NewCoordinator(f.perms, zap.NewNop(), nil)

		res, err := c.Sync(ctx, Registered{Plugin: "billing", Permissions: declared})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.ElementsMatch(t, []string{"edit_user", "PLUGIN_OTHER_THING"}, res.Rejected)

		owned, err := f.perms.ListByPlugin(ctx, "billing")
		require.NoError(t, err)
		require.Len(t, owned, 2)
		for _, p := range owned {
			assert.Equal(t, "plugin_billing", p.Section)
			assert.False(t, p.IsSystem)
		}

		sys, err := f.perms.GetByCode(ctx, "edit_user")
		require.NoError(t, err)
		assert.Equal(t, "Edit User", sys.Name)
	})

	t.Run("repeat registration is unchanged", func(t *testing.T) {
		f := newFixture(t)
		c := NewCoordinator(f.perms, zap.NewNop(), nil)
		ev := Registered{Plugin: "billing", Permissions: declared}

		require.NoError(t, c.OnRegistered(ctx, ev))
		res, err := c.Sync(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Created)
		assert.Equal(t, 0, res.Updated)
		assert.Equal(t, 2, res.Unchanged)
	})

	t.Run("nothing in namespace is a no-op", func(t *testing.T) {
		f := newFixture(t)
		c := NewCoordinator(f.perms, zap.NewNop(), nil)
		res, err := c.Sync(ctx, Registered{Plugin: "billing", Permissions: map[string]services.Declaration{
			"view_stats": {Name: "Stats"},
		}})
		require.NoError(t, err)
		assert.Zero(t, res.Created)
		assert.Equal(t, []string{"view_stats"}, res.Rejected)
	})

	t.Run("sync failure is wrapped", func(t *testing.T) {
		c := NewCoordinator(failingSync{}, zap.NewNop(), nil)
		err := c.OnRegistered(ctx, Registered{Plugin: "billing", Permissions: declared})
		assert.ErrorIs(t, err, apperrors.ErrSyncFailure)
	})

	t.Run("disable keeps permissions and role links", func(t *testing.T) {
		f := newFixture(t)
		c := NewCoordinator(f.perms, zap.NewNop(), nil)
		require.NoError(t, c.OnRegistered(ctx, Registered{Plugin: "billing", Permissions: declared}))

		perm, err := f.perms.GetByCode(ctx, "PLUGIN_BILLING_VIEW")
		require.NoError(t, err)
		role, err := f.roles.FindByName(ctx, models.RoleUser)
		require.NoError(t, err)
		require.NoError(t, f.roles.AppendPermission(ctx, role, perm))

		require.NoError(t, c.OnDisabled(ctx, Disabled{Plugin: "billing"}))

		owned, err := f.perms.ListByPlugin(ctx, "billing")
		require.NoError(t, err)
		assert.Len(t, owned, 2)

		role, err = f.roles.FindByName(ctx, models.RoleUser)
		require.NoError(t, err)
		assert.True(t, role.HasPermissionCode("PLUGIN_BILLING_VIEW"))
	})

	t.Run("re-enabling restores identical effective permissions", func(t *testing.T) {
		f := newFixture(t)
		c := NewCoordinator(f.perms, zap.NewNop(), nil)
		users := repositories.NewUserRepository(f.db)
		authorizer := auth.NewAuthorizer(repositories.NewPermissionRepository(f.db), users, zap.NewNop(), nil)

		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))
		require.NoError(t, c.OnRegistered(ctx, Registered{Plugin: "billing", Permissions: declared}))

		perm, err := f.perms.GetByCode(ctx, "PLUGIN_BILLING_REFUND")
		require.NoError(t, err)
		clerk := &models.Role{Name: "ROLE_CLERK", DisplayName: "Clerk"}
		require.NoError(t, f.roles.Create(ctx, clerk))
		require.NoError(t, f.roles.AppendPermission(ctx, clerk, perm))
		user := &models.User{Username: "clerk", Password: "x"}
		require.NoError(t, users.Create(ctx, user))
		require.NoError(t, users.AppendRole(ctx, user, clerk))

		snapshot := func() (auth.Decision, []string, []string) {
			t.Helper()
			decision, err := authorizer.DecideForUser(ctx, user.ID, "PLUGIN_BILLING_REFUND")
			require.NoError(t, err)
			loaded, err := users.FindByIDWithRoles(ctx, user.ID)
			require.NoError(t, err)
			role, err := f.roles.FindByName(ctx, "ROLE_CLERK")
			require.NoError(t, err)
			return decision, authorizer.EffectivePermissions(loaded), role.PermissionCodes()
		}
		decision, effective, roleCodes := snapshot()
		require.Equal(t, auth.Granted, decision)

		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", false))
		require.NoError(t, c.OnDisabled(ctx, Disabled{Plugin: "billing"}))

		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))
		res, err := c.Sync(ctx, Registered{Plugin: "billing", Permissions: declared})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Unchanged)

		d2, effective2, roleCodes2 := snapshot()
		assert.Equal(t, decision, d2)
		assert.Equal(t, effective, effective2)
		assert.Equal(t, roleCodes, roleCodes2)
	})

	t.Run("uninstall deletes plugin permissions", func(t *testing.T) {
		f := newFixture(t)
		c := NewCoordinator(f.perms, zap.NewNop(), nil)
		require.NoError(t, c.OnRegistered(ctx, Registered{Plugin: "billing", Permissions: declared}))

		n, err := c.Uninstall(ctx, "billing")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		_, err = f.perms.GetByCode(ctx, "PLUGIN_BILLING_VIEW")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

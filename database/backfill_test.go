package database_test

import (
	"context"
	"errors"
	"testing"

	"panel-rbac/database"
	"panel-rbac/database/dbtest"
	"panel-rbac/models"
	"panel-rbac/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestBackfillLegacyRoles(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	_, err := database.Seed(ctx, db, zap.NewNop())
	require.NoError(t, err)

	users := repositories.NewUserRepository(db)
	roles := repositories.NewRoleRepository(db)

	admin := &models.User{Username: "root", Password: "x", LegacyRoles: []string{"ROLE_USER", "ROLE_ADMIN"}}
	plain := &models.User{Username: "jane", Password: "x", LegacyRoles: []string{"ROLE_USER"}}
	empty := &models.User{Username: "nobody", Password: "x"}
	for _, u := range []*models.User{admin, plain, empty} {
		require.NoError(t, users.Create(ctx, u))
	}

	custom := &models.Role{Name: "support", DisplayName: "Support"}
	require.NoError(t, roles.Create(ctx, custom))
	migrated := &models.User{Username: "already", Password: "x", LegacyRoles: []string{"ROLE_ADMIN"}}
	require.NoError(t, users.Create(ctx, migrated))
	require.NoError(t, users.AppendRole(ctx, migrated, custom))

	res, err := database.BackfillLegacyRoles(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, database.BackfillResult{Admins: 1, Users: 2, Skipped: 1}, res)

	namesOf := func(id uint) []string {
		rs, err := roles.FindRolesForUser(ctx, id)
		require.NoError(t, err)
		var names []string
		for _, r := range rs {
			names = append(names, r.Name)
		}
		return names
	}
	assert.Equal(t, []string{models.RoleAdmin}, namesOf(admin.ID))
	assert.Equal(t, []string{models.RoleUser}, namesOf(plain.ID))
	assert.Equal(t, []string{models.RoleUser}, namesOf(empty.ID))
	assert.Equal(t, []string{"support"}, namesOf(migrated.ID))

	res, err = database.BackfillLegacyRoles(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, database.BackfillResult{Skipped: 4}, res)
}

func TestBackfillLegacyRolesRollsBackFailedBatch(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	_, err := database.Seed(ctx, db, zap.NewNop())
	require.NoError(t, err)

	users := repositories.NewUserRepository(db)
	roles := repositories.NewRoleRepository(db)
	var created []*models.User
	for _, name := range []string{"ann", "bob", "cid"} {
		u := &models.User{Username: name, Password: "x", LegacyRoles: []string{"ROLE_USER"}}
		require.NoError(t, users.Create(ctx, u))
		created = append(created, u)
	}

	// The second role assignment fails.
	var assignments int
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_assignment", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_role" {
			assignments++
			if assignments == 2 {
				_ = tx.AddError(errors.New("disk I/O error"))
			}
		}
	}))

	_, err = database.BackfillLegacyRoles(ctx, db, zap.NewNop())
	require.Error(t, err)
	for _, u := range created {
		rs, err := roles.FindRolesForUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, rs, "user %s", u.Username)
	}

	require.NoError(t, db.Callback().Create().Remove("test:fail_assignment"))
	res, err := database.BackfillLegacyRoles(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, database.BackfillResult{Users: 3}, res)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	require.NoError(t, database.Bootstrap(ctx, db, zap.NewNop()))
	require.NoError(t, database.Bootstrap(ctx, db, zap.NewNop()))

	var n int64
	require.NoError(t, db.Model(&models.Role{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

package database

import (
	"context"
	"fmt"

	"panel-rbac/models"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const backfillBatchSize = 200

// BackfillResult counts the users converted by BackfillLegacyRoles.
type BackfillResult struct {
	Admins  int
	Users   int
	Skipped int
}

// BackfillLegacyRoles converts the legacy flat role list into relational
// assignments. A user whose legacy list contains ROLE_ADMIN gets exactly the
// admin role; every other user gets exactly the user role. Users that
// already hold relational roles are left alone, which makes the conversion
// safe to repeat.
func BackfillLegacyRoles(ctx context.Context, db *gorm.DB, log *zap.Logger) (BackfillResult, error) {
	var res BackfillResult
	log = log.Named("backfill")

	roles := repositories.NewRoleRepository(db)
	adminRole, err := roles.FindByName(ctx, models.RoleAdmin)
	if err != nil {
		return res, fmt.Errorf("loading %s: %w", models.RoleAdmin, err)
	}
	userRole, err := roles.FindByName(ctx, models.RoleUser)
	if err != nil {
		return res, fmt.Errorf("loading %s: %w", models.RoleUser, err)
	}

	users := repositories.NewUserRepository(db)
	err = users.FindAllForBackfill(ctx, backfillBatchSize, func(batch []models.User) error {
		// One transaction per batch: a failure leaves the whole batch unconverted.
		var admins, plain, skipped int
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txUsers := repositories.NewUserRepository(tx)
			for i := range batch {
				u := &batch[i]
				if len(u.Roles) > 0 {
					skipped++
					continue
				}
				target := userRole
				if u.HasLegacyRole(models.RoleAdmin) {
					target = adminRole
				}
				if err := txUsers.AppendRole(ctx, u, target); err != nil {
					return fmt.Errorf("assigning %s to user %d: %w", target.Name, u.ID, err)
				}
				if target == adminRole {
					admins++
				} else {
					plain++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		res.Admins += admins
		res.Users += plain
		res.Skipped += skipped
		return nil
	})
	if err != nil {
		return res, err
	}

	log.Info("Legacy role backfill finished",
		zap.Int("admins", res.Admins),
		zap.Int("users", res.Users),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// Bootstrap migrates the schema, seeds the system catalog and converts legacy
// role lists.
func Bootstrap(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if _, err := Seed(ctx, db, log); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	if _, err := BackfillLegacyRoles(ctx, db, log); err != nil {
		return fmt.Errorf("backfilling legacy roles: %w", err)
	}
	return nil
}

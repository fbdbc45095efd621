package database

import (
	"context"
	"errors"
	"fmt"

	"panel-rbac/models"
	"panel-rbac/permissions"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedResult reports what Seed had to create.
type SeedResult struct {
	PermissionsCreated int
	RolesCreated       int
}

type seedRole struct {
	Name        string
	DisplayName string
	Description string
	// nil means every permission present at seed time
	Codes []permissions.Code
}

var systemRoles = []seedRole{
	{
		Name:        models.RoleAdmin,
		DisplayName: "Administrator",
		Description: "Full system access with all permissions",
	},
	{
		Name:        models.RoleUser,
		DisplayName: "User",
		Description: "Standard user with basic permissions",
		Codes:       permissions.StandardUserCodes(),
	},
}

// Seed installs the system permissions and the two system roles. It only
// creates what is missing, so running it again is harmless. Roles that
// already exist keep their current permission set.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger) (SeedResult, error) {
	var res SeedResult
	log = log.Named("seed")

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sp := range systemPermissions {
			var existing models.Permission
			err := tx.Where("code = ?", string(sp.Code)).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("checking permission %s: %w", sp.Code, err)
			}
			desc := sp.Description
			perm := models.Permission{
				Code:        string(sp.Code),
				Name:        sp.Name,
				Description: &desc,
				Section:     sp.Section,
				IsSystem:    true,
			}
			if err := tx.Create(&perm).Error; err != nil {
				return fmt.Errorf("seeding permission %s: %w", sp.Code, err)
			}
			res.PermissionsCreated++
		}

		for _, sr := range systemRoles {
			var existing models.Role
			err := tx.Where("name = ?", sr.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("checking role %s: %w", sr.Name, err)
			}

			var perms []models.Permission
			q := tx.Order("id")
			if sr.Codes != nil {
				q = q.Where("code IN ?", permissions.Strings(sr.Codes))
			}
			if err := q.Find(&perms).Error; err != nil {
				return fmt.Errorf("loading permissions for role %s: %w", sr.Name, err)
			}

			desc := sr.Description
			role := models.Role{
				Name:        sr.Name,
				DisplayName: sr.DisplayName,
				Description: &desc,
				IsSystem:    true,
				Permissions: perms,
			}
			if err := tx.Omit("Users").Create(&role).Error; err != nil {
				return fmt.Errorf("seeding role %s: %w", sr.Name, err)
			}
			log.Info("Seeded system role", zap.String("role", sr.Name), zap.Int("permissions", len(perms)))
			res.RolesCreated++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	if res.PermissionsCreated > 0 {
		log.Info("Seeded system permissions", zap.Int("count", res.PermissionsCreated))
	}
	return res, nil
}

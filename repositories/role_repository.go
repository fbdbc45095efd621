package repositories

import (
	"context"

	"panel-rbac/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository interface defines Role-related database operations
type RoleRepository interface {
	WithTx(tx *gorm.DB) RoleRepository
	Create(ctx context.Context, role *models.Role) error
	Save(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	FindSystem(ctx context.Context) ([]models.Role, error)
	FindCustom(ctx context.Context) ([]models.Role, error)
	FindAllOrdered(ctx context.Context) ([]models.Role, error)
	FindRolesForUser(ctx context.Context, userID uint) ([]models.Role, error)
	CountUsers(ctx context.Context, roleID uint) (int64, error)
	CountRolesWithPermission(ctx context.Context, permissionID uint) (int64, error)
	ReplacePermissions(ctx context.Context, role *models.Role, perms []models.Permission) error
	AppendPermission(ctx context.Context, role *models.Role, perm *models.Permission) error
	RemovePermission(ctx context.Context, role *models.Role, perm *models.Permission) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository instance
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) WithTx(tx *gorm.DB) RoleRepository {
	return &roleRepository{db: tx}
}

func orderedPermissions(db *gorm.DB) *gorm.DB {
	return db.Order("permission.section, permission.code")
}

// Create creates a new Role together with any permissions already attached
func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Omit("Users").Create(role).Error
}

// Save updates the scalar columns of role
func (r *roleRepository) Save(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(role).Error
}

// Delete detaches role from its permissions and users, then removes it
func (r *roleRepository) Delete(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(role).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
}

// FindByID finds Role by ID with its permissions
func (r *roleRepository) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions", orderedPermissions).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByName finds Role by Name with its permissions
func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Preload("Permissions", orderedPermissions).
		Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindSystem(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Where("is_system = ?", true).Order("display_name").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) FindCustom(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Where("is_system = ?", false).Order("display_name").Find(&roles).Error
	return roles, err
}

// FindAllOrdered lists system roles first, then by display name
func (r *roleRepository) FindAllOrdered(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Preload("Permissions", orderedPermissions).
		Order("is_system DESC, display_name ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) FindRolesForUser(ctx context.Context, userID uint) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Preload("Permissions", orderedPermissions).
		Joins("JOIN user_role ON user_role.role_id = role.id").
		Where("user_role.user_id = ?", userID).
		Order("role.name").
		Find(&roles).Error
	return roles, err
}

func (r *roleRepository) CountUsers(ctx context.Context, roleID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("user_role").Where("role_id = ?", roleID).Count(&n).Error
	return n, err
}

func (r *roleRepository) CountRolesWithPermission(ctx context.Context, permissionID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("role_permission").Where("permission_id = ?", permissionID).Count(&n).Error
	return n, err
}

// ReplacePermissions clears the role's permission set and adds perms, in one
// transaction. Either the whole new set lands or the old one stays.
func (r *roleRepository) ReplacePermissions(ctx context.Context, role *models.Role, perms []models.Permission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		if len(perms) == 0 {
			return nil
		}
		return tx.Model(role).Association("Permissions").Append(perms)
	})
}

// AppendPermission links perm to role. Linking twice is a no-op.
func (r *roleRepository) AppendPermission(ctx context.Context, role *models.Role, perm *models.Permission) error {
	return r.db.WithContext(ctx).Model(role).Association("Permissions").Append(perm)
}

func (r *roleRepository) RemovePermission(ctx context.Context, role *models.Role, perm *models.Permission) error {
	return r.db.WithContext(ctx).Model(role).Association("Permissions").Delete(perm)
}

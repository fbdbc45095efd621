package repositories

import (
	"context"

	"panel-rbac/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SectionCount is the number of permissions in one UI section.
type SectionCount struct {
	Section string `json:"section"`
	Count   int64  `json:"count"`
}

// PermissionRepository interface defines Permission-related database operations
type PermissionRepository interface {
	// WithTx returns a repository bound to tx, for batching several calls
	// into one transaction.
	WithTx(tx *gorm.DB) PermissionRepository
	Create(ctx context.Context, perm *models.Permission) error
	Save(ctx context.Context, perm *models.Permission) error
	Delete(ctx context.Context, perm *models.Permission) error
	FindByID(ctx context.Context, id uint) (*models.Permission, error)
	FindByCode(ctx context.Context, code string) (*models.Permission, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.Permission, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindAll(ctx context.Context) ([]models.Permission, error)
	FindByPlugin(ctx context.Context, pluginName string) ([]models.Permission, error)
	FindBySection(ctx context.Context, section string) ([]models.Permission, error)
	FindSystem(ctx context.Context) ([]models.Permission, error)
	FindActive(ctx context.Context, enabledPlugins []string) ([]models.Permission, error)
	SectionsWithCount(ctx context.Context) ([]SectionCount, error)
	DeleteByPlugin(ctx context.Context, pluginName string) (int64, error)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new PermissionRepository instance
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) WithTx(tx *gorm.DB) PermissionRepository {
	return &permissionRepository{db: tx}
}

// Create creates a new Permission
func (r *permissionRepository) Create(ctx context.Context, perm *models.Permission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(perm).Error
}

// Save updates the scalar columns of perm. Role links are left alone.
func (r *permissionRepository) Save(ctx context.Context, perm *models.Permission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(perm).Error
}

// Delete removes perm after detaching it from every role
func (r *permissionRepository) Delete(ctx context.Context, perm *models.Permission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(perm).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(perm).Error
	})
}

// FindByID finds Permission by ID
func (r *permissionRepository) FindByID(ctx context.Context, id uint) (*models.Permission, error) {
	var perm models.Permission
	if err := r.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindByCode finds Permission by Code
func (r *permissionRepository) FindByCode(ctx context.Context, code string) (*models.Permission, error) {
	var perm models.Permission
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindByCodes returns the permissions whose code is in codes. Unknown codes
// are silently absent from the result.
func (r *permissionRepository) FindByCodes(ctx context.Context, codes []string) ([]models.Permission, error) {
	var perms []models.Permission
	if len(codes) == 0 {
		return perms, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Order("code").Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Permission{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *permissionRepository) FindAll(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).Order("section, name").Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) FindByPlugin(ctx context.Context, pluginName string) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).Where("plugin_name = ?", pluginName).Order("code").Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) FindBySection(ctx context.Context, section string) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).Where("section = ?", section).Order("name").Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) FindSystem(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).Where("is_system = ?", true).Order("section, name").Find(&perms).Error
	return perms, err
}

// FindActive returns core permissions plus those owned by one of the
// enabled plugins, ordered by section then name.
func (r *permissionRepository) FindActive(ctx context.Context, enabledPlugins []string) ([]models.Permission, error) {
	var perms []models.Permission
	q := r.db.WithContext(ctx)
	if len(enabledPlugins) == 0 {
		q = q.Where("plugin_name IS NULL")
	} else {
		q = q.Where("plugin_name IS NULL OR plugin_name IN ?", enabledPlugins)
	}
	err := q.Order("section, name").Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) SectionsWithCount(ctx context.Context) ([]SectionCount, error) {
	var out []SectionCount
	err := r.db.WithContext(ctx).Model(&models.Permission{}).
		Select("section, COUNT(*) AS count").
		Group("section").
		Order("section").
		Scan(&out).Error
	return out, err
}

// DeleteByPlugin removes every permission owned by pluginName together with
// its role links, in one transaction. It returns the number of permissions
// removed.
func (r *permissionRepository) DeleteByPlugin(ctx context.Context, pluginName string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Permission{}).Select("id").Where("plugin_name = ?", pluginName)
		if err := tx.Exec("DELETE FROM role_permission WHERE permission_id IN (?)", owned).Error; err != nil {
			return err
		}
		res := tx.Where("plugin_name = ?", pluginName).Delete(&models.Permission{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}

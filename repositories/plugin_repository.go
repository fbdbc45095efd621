package repositories

import (
	"context"

	"panel-rbac/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PluginRepository reads the plugin-management subsystem's table. It is the
// authoritative source of which plugins are installed and enabled.
type PluginRepository interface {
	FindEnabledNames(ctx context.Context) ([]string, error)
	FindInstalledNames(ctx context.Context) ([]string, error)
	// SetEnabled records a plugin as installed with the given state.
	SetEnabled(ctx context.Context, name string, enabled bool) error
	Remove(ctx context.Context, name string) error
}

type pluginRepository struct {
	db *gorm.DB
}

// NewPluginRepository creates a new PluginRepository instance
func NewPluginRepository(db *gorm.DB) PluginRepository {
	return &pluginRepository{db: db}
}

func (r *pluginRepository) FindEnabledNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Plugin{}).
		Where("enabled = ?", true).Order("name").Pluck("name", &names).Error
	return names, err
}

func (r *pluginRepository) FindInstalledNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Plugin{}).Order("name").Pluck("name", &names).Error
	return names, err
}

func (r *pluginRepository) SetEnabled(ctx context.Context, name string, enabled bool) error {
	p := models.Plugin{Name: name, DisplayName: name, Enabled: enabled}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&p).Error
}

func (r *pluginRepository) Remove(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Plugin{}).Error
}

package models

import "time"

// Permission is an atomic capability identified by a stable Code
// (e.g. "edit_server", "PLUGIN_BACKUPS_RESTORE").
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Section     string    `gorm:"size:100;index;not null" json:"section"`
	IsSystem    bool      `gorm:"not null;default:false;index" json:"is_system"`
	PluginName  *string   `gorm:"size:100;index" json:"plugin_name,omitempty"` // non-nil marks a plugin-owned permission
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Roles       []Role    `gorm:"many2many:role_permission;constraint:OnDelete:CASCADE" json:"-"`
}

func (Permission) TableName() string { return "permission" }

// OwnedBy reports whether the permission belongs to the named plugin.
func (p *Permission) OwnedBy(pluginName string) bool {
	return p.PluginName != nil && *p.PluginName == pluginName
}

// IsPluginOwned reports whether any plugin owns the permission.
func (p *Permission) IsPluginOwned() bool {
	return p.PluginName != nil
}

package models

import "time"

// Plugin is the plugin-management subsystem's record of an installed plugin.
// The RBAC core treats it as the authoritative source of "enabled" state.
type Plugin struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Enabled     bool      `gorm:"not null;default:false;index" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Plugin) TableName() string { return "plugin" }

// All lists every model the RBAC core migrates.
func All() []any {
	return []any{&User{}, &Role{}, &Permission{}, &Plugin{}}
}

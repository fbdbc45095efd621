package models

import "time"

// Names of the built-in roles.
const (
	RoleAdmin = "ROLE_ADMIN"
	// RoleUser is also the implicit base role every subject carries.
	RoleUser = "ROLE_USER"
)

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;uniqueIndex;not null" json:"name"`
	DisplayName string       `gorm:"size:255;not null" json:"display_name"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	IsSystem    bool         `gorm:"not null;default:false;index" json:"is_system"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Permissions []Permission `gorm:"many2many:role_permission;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_role;constraint:OnDelete:CASCADE" json:"-"`
}

func (Role) TableName() string { return "role" }

// HasPermissionCode reports whether the loaded permission set contains code.
func (r *Role) HasPermissionCode(code string) bool {
	for _, p := range r.Permissions {
		if p.Code == code {
			return true
		}
	}
	return false
}

// PermissionCodes returns the codes of the loaded permission set.
func (r *Role) PermissionCodes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}

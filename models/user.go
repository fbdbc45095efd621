package models

import "time"

// User is the authenticated subject. It is owned by the identity subsystem;
// the RBAC core only reads it and manages its role assignments.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:180;uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"` // Don't expose password hash
	Email    string `gorm:"size:180" json:"email"`
	// Flat role names from before the relational model existed, e.g. ["ROLE_ADMIN"].
	LegacyRoles []string  `gorm:"column:roles;type:json;serializer:json" json:"legacy_roles,omitempty"`
	Roles       []Role    `gorm:"many2many:user_role;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasLegacyRole reports whether the legacy flat role list contains name.
func (u *User) HasLegacyRole(name string) bool {
	for _, r := range u.LegacyRoles {
		if r == name {
			return true
		}
	}
	return false
}

// HasRole reports whether a role with roleID is among the loaded assignments.
func (u *User) HasRole(roleID uint) bool {
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

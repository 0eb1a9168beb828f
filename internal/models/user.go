package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents a registered user. Authentication itself is handled
// by the session layer in front of this backend; the backend only needs
// the token to resolve the caller identity for ownership checks.
type User struct {
	DefaultModel
	Name  string
	Token string `gorm:"uniqueIndex"`
}

// BeforeSave trims whitespace from all strings.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Token = strings.TrimSpace(u.Token)

	return nil
}

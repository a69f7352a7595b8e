package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is a staff account. PasswordHash is empty for accounts created
// through an external identity provider; such accounts can only sign in
// via their linked provider until a password is set.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Name         string   `gorm:"size:256" json:"name"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Role         UserRole `gorm:"size:20;default:'user'" json:"role"`

	// External identity linkage (e.g. "google" + provider subject ID).
	ExternalProvider string `gorm:"size:50;index:idx_external_identity" json:"external_provider,omitempty"`
	ExternalID       string `gorm:"size:255;index:idx_external_identity" json:"-"`
	AvatarURL        string `gorm:"size:2048" json:"avatar_url,omitempty"`

	// Login throttling state
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

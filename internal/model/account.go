package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleUser          Role = "User"
	RoleAdministrator Role = "Administrator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdministrator
}

// Account represents a person allowed to sign in to the lab.
type Account struct {
	ID               uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email            string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role             Role       `json:"role" gorm:"type:varchar(20);not null;default:'User';index"`
	FailedLoginCount int        `json:"failed_login_count" gorm:"not null;default:0"`
	LockedUntil      *time.Time `json:"locked_until"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the lockout window is still open at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

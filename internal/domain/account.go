package domain

import (
	"fmt"
	"strings"
	"time"
)

// Account owns destinations and templates and holds the long-lived API
// credential used to authenticate dispatch calls.
type Account struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	Username       string     `gorm:"type:varchar(80);not null;uniqueIndex"`
	Email          string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	PasswordHash   string     `gorm:"type:varchar(120);not null"`
	APIToken       *string    `gorm:"type:varchar(64);uniqueIndex"`
	TokenExpiresAt *time.Time `gorm:"type:timestamptz"`
	IsActive       bool       `gorm:"not null;default:true"`
	LastLoginAt    *time.Time `gorm:"type:timestamptz"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return nil
}

// CredentialValidAt reports whether the account's API token is usable
// at the given instant: a token must be set, unexpired, and the account
// active.
func (a *Account) CredentialValidAt(now time.Time) bool {
	if a == nil || !a.IsActive {
		return false
	}
	if a.APIToken == nil || strings.TrimSpace(*a.APIToken) == "" {
		return false
	}
	if a.TokenExpiresAt == nil {
		return false
	}
	return now.Before(*a.TokenExpiresAt)
}

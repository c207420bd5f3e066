package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the adapter used to deliver to a destination.
type Platform string

const (
	PlatformFeishu   Platform = "feishu"
	PlatformFlomo    Platform = "flomo"
	PlatformDingTalk Platform = "dingtalk"
	PlatformWework   Platform = "wework"
	PlatformTelegram Platform = "telegram"
	PlatformEmail    Platform = "email"
	PlatformWebhook  Platform = "webhook"
)

func (p Platform) String() string { return string(p) }

func (p Platform) IsValid() bool {
	switch p {
	case PlatformFeishu, PlatformFlomo, PlatformDingTalk, PlatformWework,
		PlatformTelegram, PlatformEmail, PlatformWebhook:
		return true
	}
	return false
}

func ParsePlatformFromString(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: invalid platform %q", ErrValidation, s)
	}
	return p, nil
}

// Destination is a configured external messaging endpoint owned by one
// account. Endpoint is an opaque connection descriptor whose format is
// platform specific: a bare webhook URL for chat platforms,
// botToken:chatId for telegram, host:port:user:pass:recipient for
// email. Secret is only meaningful for signed webhooks (dingtalk).
type Destination struct {
	ID        string   `gorm:"type:uuid;primaryKey"`
	AccountID string   `gorm:"type:uuid;not null;index"`
	Name      string   `gorm:"type:varchar(100);not null"`
	Platform  Platform `gorm:"type:varchar(50);not null"`
	Endpoint  string   `gorm:"type:text;not null"`
	Secret    *string  `gorm:"type:text"`
	IsActive  bool     `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Destination) Validate() error {
	if strings.TrimSpace(d.AccountID) == "" {
		return fmt.Errorf("%w: account id is required", ErrValidation)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: destination name is required", ErrValidation)
	}
	if !d.Platform.IsValid() {
		return fmt.Errorf("%w: invalid platform %q", ErrValidation, d.Platform)
	}
	if strings.TrimSpace(d.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrValidation)
	}
	return nil
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// CopySuffix is appended to the name of a public template that was
// copied into another account.
const CopySuffix = " (复制)"

// Template is a reusable message body with {{variable}} placeholders.
// Private templates are usable only by their owner; public ones are
// usable (and copyable, but not mutable) by any account.
type Template struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	AccountID   string  `gorm:"type:uuid;not null;index"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Description string  `gorm:"type:text"`
	Content     string  `gorm:"type:text;not null"`
	Variables   string  `gorm:"type:text"` // JSON array of declared variable names
	Category    string  `gorm:"type:varchar(50);default:custom"`
	IsPublic    bool    `gorm:"not null;default:false"`
	UsageCount  int64   `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Template) Validate() error {
	if strings.TrimSpace(t.AccountID) == "" {
		return fmt.Errorf("%w: account id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("%w: template content is required", ErrValidation)
	}
	return nil
}

// UsableBy reports whether an account may render this template.
func (t *Template) UsableBy(accountID string) bool {
	if t == nil {
		return false
	}
	return t.IsPublic || t.AccountID == accountID
}

// Render substitutes {{name}} placeholders with the given values.
// Placeholders without a matching variable are left verbatim, so
// rendering is always total and idempotent for a fixed variable set.
func (t *Template) Render(variables map[string]string) string {
	rendered := t.Content
	for key, value := range variables {
		rendered = strings.ReplaceAll(rendered, "{{"+key+"}}", value)
	}
	return rendered
}

// CopyFor clones a public template into the given account. The clone
// is an independent, mutable, private template.
func (t *Template) CopyFor(accountID string, id string) Template {
	return Template{
		ID:          id,
		AccountID:   accountID,
		Name:        t.Name + CopySuffix,
		Description: t.Description,
		Content:     t.Content,
		Variables:   t.Variables,
		Category:    t.Category,
		IsPublic:    false,
	}
}

package repository

import (
	"time"

	"github.com/umutkarci/notify-manager/internal/domain"
)

// AccountModel is the persistence model for the accounts table.
type AccountModel struct {
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

func (AccountModel) TableName() string { return "accounts" }

// DestinationModel is the persistence model for destinations.
type DestinationModel struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	AccountID string          `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Platform  domain.Platform `gorm:"type:varchar(50);not null"`
	Endpoint  string          `gorm:"type:text;not null"`
	Secret    *string         `gorm:"type:text"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DestinationModel) TableName() string { return "destinations" }

// TemplateModel is the persistence model for templates.
type TemplateModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	AccountID   string `gorm:"type:uuid;not null;index"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Content     string `gorm:"type:text;not null"`
	Variables   string `gorm:"type:text"`
	Category    string `gorm:"type:varchar(50);default:custom"`
	IsPublic    bool   `gorm:"not null;default:false"`
	UsageCount  int64  `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TemplateModel) TableName() string { return "templates" }

// DeliveryRecordModel is the persistence model for delivery_records.
// Rows are insert-only.
type DeliveryRecordModel struct {
	ID            string                `gorm:"type:uuid;primaryKey"`
	AccountID     string                `gorm:"type:uuid;not null;index"`
	DestinationID string                `gorm:"type:uuid;not null"`
	TemplateID    *string               `gorm:"type:uuid"`
	BatchID       string                `gorm:"type:varchar(50)"`
	Message       string                `gorm:"type:text;not null"`
	Status        domain.DeliveryStatus `gorm:"type:varchar(20);not null"`
	StatusCode    int                   `gorm:"not null;default:0"`
	ErrorMessage  *string               `gorm:"type:text"`
	SentAt        time.Time             `gorm:"not null"`
}

func (DeliveryRecordModel) TableName() string { return "delivery_records" }

func accountModelFromDomain(a *domain.Account) *AccountModel {
	if a == nil {
		return nil
	}
	return &AccountModel{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		PasswordHash:   a.PasswordHash,
		APIToken:       a.APIToken,
		TokenExpiresAt: a.TokenExpiresAt,
		IsActive:       a.IsActive,
		LastLoginAt:    a.LastLoginAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func accountModelToDomain(m *AccountModel) *domain.Account {
	if m == nil {
		return nil
	}
	return &domain.Account{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		APIToken:       m.APIToken,
		TokenExpiresAt: m.TokenExpiresAt,
		IsActive:       m.IsActive,
		LastLoginAt:    m.LastLoginAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func destinationModelFromDomain(d *domain.Destination) *DestinationModel {
	if d == nil {
		return nil
	}
	return &DestinationModel{
		ID:        d.ID,
		AccountID: d.AccountID,
		Name:      d.Name,
		Platform:  d.Platform,
		Endpoint:  d.Endpoint,
		Secret:    d.Secret,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func destinationModelToDomain(m *DestinationModel) *domain.Destination {
	if m == nil {
		return nil
	}
	return &domain.Destination{
		ID:        m.ID,
		AccountID: m.AccountID,
		Name:      m.Name,
		Platform:  m.Platform,
		Endpoint:  m.Endpoint,
		Secret:    m.Secret,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func templateModelFromDomain(t *domain.Template) *TemplateModel {
	if t == nil {
		return nil
	}
	return &TemplateModel{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Name:        t.Name,
		Description: t.Description,
		Content:     t.Content,
		Variables:   t.Variables,
		Category:    t.Category,
		IsPublic:    t.IsPublic,
		UsageCount:  t.UsageCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func templateModelToDomain(m *TemplateModel) *domain.Template {
	if m == nil {
		return nil
	}
	return &domain.Template{
		ID:          m.ID,
		AccountID:   m.AccountID,
		Name:        m.Name,
		Description: m.Description,
		Content:     m.Content,
		Variables:   m.Variables,
		Category:    m.Category,
		IsPublic:    m.IsPublic,
		UsageCount:  m.UsageCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func deliveryModelFromDomain(r *domain.DeliveryRecord) *DeliveryRecordModel {
	if r == nil {
		return nil
	}
	return &DeliveryRecordModel{
		ID:            r.ID,
		AccountID:     r.AccountID,
		DestinationID: r.DestinationID,
		TemplateID:    r.TemplateID,
		BatchID:       r.BatchID,
		Message:       r.Message,
		Status:        r.Status,
		StatusCode:    r.StatusCode,
		ErrorMessage:  r.ErrorMessage,
		SentAt:        r.SentAt,
	}
}

func deliveryModelToDomain(m *DeliveryRecordModel) *domain.DeliveryRecord {
	if m == nil {
		return nil
	}
	return &domain.DeliveryRecord{
		ID:            m.ID,
		AccountID:     m.AccountID,
		DestinationID: m.DestinationID,
		TemplateID:    m.TemplateID,
		BatchID:       m.BatchID,
		Message:       m.Message,
		Status:        m.Status,
		StatusCode:    m.StatusCode,
		ErrorMessage:  m.ErrorMessage,
		SentAt:        m.SentAt,
	}
}

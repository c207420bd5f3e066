package domain

import "time"

// DeliveryStatus is the terminal outcome of one send attempt.
type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string { return string(s) }

// DeliveryRecord is the immutable audit row written for every
// (account, destination) send attempt. Rows are never updated after
// creation; aggregate statistics are derived from them.
type DeliveryRecord struct {
	ID            string         `gorm:"type:uuid;primaryKey"`
	AccountID     string         `gorm:"type:uuid;not null;index"`
	DestinationID string         `gorm:"type:uuid;not null"`
	TemplateID    *string        `gorm:"type:uuid"`
	BatchID       string         `gorm:"type:varchar(50)"`
	Message       string         `gorm:"type:text;not null"`
	Status        DeliveryStatus `gorm:"type:varchar(20);not null"`
	StatusCode    int            `gorm:"not null;default:0"`
	ErrorMessage  *string        `gorm:"type:text"`
	SentAt        time.Time      `gorm:"not null"`
}

// AccountStats aggregates delivery outcomes for an account's dashboard
// and /api/stats.
type AccountStats struct {
	TotalDestinations int64 `json:"total_destinations"`
	SuccessCount      int64 `json:"success_count"`
	FailedCount       int64 `json:"failed_count"`
	TotalCount        int64 `json:"total_count"`
}

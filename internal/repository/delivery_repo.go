package repository

import (
	"context"

	"github.com/umutkarci/notify-manager/internal/domain"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	// CreateBatch inserts all records in one transaction: the audit
	// write is all-or-nothing regardless of individual send outcomes.
	CreateBatch(ctx context.Context, records []domain.DeliveryRecord) error
	ListRecent(ctx context.Context, accountID string, limit int) ([]domain.DeliveryRecord, error)
	CountByStatus(ctx context.Context, accountID string, status domain.DeliveryStatus) (int64, error)
}

type GormDeliveryRepo struct {
	db *gorm.DB
}

func NewGormDeliveryRepo(db *gorm.DB) *GormDeliveryRepo {
	return &GormDeliveryRepo{db: db}
}

func (r *GormDeliveryRepo) CreateBatch(ctx context.Context, records []domain.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]DeliveryRecordModel, 0, len(records))
	for i := range records {
		models = append(models, *deliveryModelFromDomain(&records[i]))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&models, 100).Error
	})
}

func (r *GormDeliveryRepo) ListRecent(ctx context.Context, accountID string, limit int) ([]domain.DeliveryRecord, error) {
	if limit < 1 {
		limit = 10
	}

	var models []DeliveryRecordModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.DeliveryRecord, 0, len(models))
	for i := range models {
		records = append(records, *deliveryModelToDomain(&models[i]))
	}
	return records, nil
}

func (r *GormDeliveryRepo) CountByStatus(ctx context.Context, accountID string, status domain.DeliveryStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&DeliveryRecordModel{}).
		Where("account_id = ? AND status = ?", accountID, status).
		Count(&total).Error
	return total, err
}

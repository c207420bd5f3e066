package repository

import (
	"context"
	"errors"

	"github.com/umutkarci/notify-manager/internal/domain"
	"gorm.io/gorm"
)

type DestinationRepository interface {
	Create(ctx context.Context, d *domain.Destination) error
	GetByID(ctx context.Context, id string) (*domain.Destination, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Destination, error)
	ListActive(ctx context.Context, accountID string) ([]domain.Destination, error)
	ListActiveByName(ctx context.Context, accountID string, name string) ([]domain.Destination, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
	Update(ctx context.Context, d *domain.Destination) error
	Delete(ctx context.Context, accountID string, id string) error
}

type GormDestinationRepo struct {
	db *gorm.DB
}

func NewGormDestinationRepo(db *gorm.DB) *GormDestinationRepo {
	return &GormDestinationRepo{db: db}
}

func (r *GormDestinationRepo) Create(ctx context.Context, d *domain.Destination) error {
	model := destinationModelFromDomain(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if d != nil {
		*d = *destinationModelToDomain(model)
	}
	return nil
}

func (r *GormDestinationRepo) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	var model DestinationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return destinationModelToDomain(&model), nil
}

func (r *GormDestinationRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Destination, error) {
	return r.list(ctx, map[string]any{"account_id": accountID})
}

func (r *GormDestinationRepo) ListActive(ctx context.Context, accountID string) ([]domain.Destination, error) {
	return r.list(ctx, map[string]any{"account_id": accountID, "is_active": true})
}

func (r *GormDestinationRepo) ListActiveByName(ctx context.Context, accountID string, name string) ([]domain.Destination, error) {
	return r.list(ctx, map[string]any{"account_id": accountID, "is_active": true, "name": name})
}

func (r *GormDestinationRepo) list(ctx context.Context, conditions map[string]any) ([]domain.Destination, error) {
	var models []DestinationModel
	err := r.db.WithContext(ctx).
		Where(conditions).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	destinations := make([]domain.Destination, 0, len(models))
	for i := range models {
		destinations = append(destinations, *destinationModelToDomain(&models[i]))
	}
	return destinations, nil
}

func (r *GormDestinationRepo) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&DestinationModel{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

func (r *GormDestinationRepo) Update(ctx context.Context, d *domain.Destination) error {
	if d == nil {
		return domain.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&DestinationModel{}).
		Where("id = ? AND account_id = ?", d.ID, d.AccountID).
		Updates(map[string]any{
			"name":      d.Name,
			"platform":  d.Platform,
			"endpoint":  d.Endpoint,
			"secret":    d.Secret,
			"is_active": d.IsActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormDestinationRepo) Delete(ctx context.Context, accountID string, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&DestinationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

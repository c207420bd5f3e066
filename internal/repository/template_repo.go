package repository

import (
	"context"
	"errors"

	"github.com/umutkarci/notify-manager/internal/domain"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	GetByAccountAndName(ctx context.Context, accountID string, name string) (*domain.Template, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Template, error)
	ListPublic(ctx context.Context, limit int) ([]domain.Template, error)
	Update(ctx context.Context, t *domain.Template) error
	Delete(ctx context.Context, accountID string, id string) error
	IncrementUsage(ctx context.Context, id string) error
}

type GormTemplateRepo struct {
	db *gorm.DB
}

func NewGormTemplateRepo(db *gorm.DB) *GormTemplateRepo {
	return &GormTemplateRepo{db: db}
}

func (r *GormTemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	model := templateModelFromDomain(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if t != nil {
		*t = *templateModelToDomain(model)
	}
	return nil
}

func (r *GormTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	var model TemplateModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return templateModelToDomain(&model), nil
}

func (r *GormTemplateRepo) GetByAccountAndName(ctx context.Context, accountID string, name string) (*domain.Template, error) {
	var model TemplateModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND name = ?", accountID, name).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return templateModelToDomain(&model), nil
}

func (r *GormTemplateRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Template, error) {
	var models []TemplateModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return templatesToDomain(models), nil
}

func (r *GormTemplateRepo) ListPublic(ctx context.Context, limit int) ([]domain.Template, error) {
	if limit < 1 {
		limit = 10
	}

	var models []TemplateModel
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("usage_count DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return templatesToDomain(models), nil
}

func (r *GormTemplateRepo) Update(ctx context.Context, t *domain.Template) error {
	if t == nil {
		return domain.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&TemplateModel{}).
		Where("id = ? AND account_id = ?", t.ID, t.AccountID).
		Updates(map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"content":     t.Content,
			"variables":   t.Variables,
			"category":    t.Category,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormTemplateRepo) Delete(ctx context.Context, accountID string, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&TemplateModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormTemplateRepo) IncrementUsage(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&TemplateModel{}).
		Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func templatesToDomain(models []TemplateModel) []domain.Template {
	templates := make([]domain.Template, 0, len(models))
	for i := range models {
		templates = append(templates, *templateModelToDomain(&models[i]))
	}
	return templates
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/repository"
	"go.uber.org/zap"
)

// publicTemplatesLimit caps the shared-template section of a listing.
const publicTemplatesLimit = 10

// TemplateService enforces template visibility and implements
// management, rendering and public-template copying.
type TemplateService struct {
	templates repository.TemplateRepository
	logger    *zap.Logger
}

func NewTemplateService(templates repository.TemplateRepository, logger *zap.Logger) (*TemplateService, error) {
	if templates == nil {
		return nil, fmt.Errorf("template repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{templates: templates, logger: logger}, nil
}

type TemplateInput struct {
	Name        string
	Description string
	Content     string
	Variables   []string
	Category    string
}

// Create stores a new private template for the account. Variable
// declarations are kept as a JSON array; a name collision within the
// account is rejected before the unique index fires.
func (s *TemplateService) Create(ctx context.Context, accountID string, input TemplateInput) (*domain.Template, error) {
	name := strings.TrimSpace(input.Name)
	if name != "" {
		if existing, err := s.templates.GetByAccountAndName(ctx, accountID, name); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("%w: template %q already exists", domain.ErrConflict, name)
		}
	}

	variables, err := encodeVariables(input.Variables)
	if err != nil {
		return nil, err
	}

	template := &domain.Template{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Content:     input.Content,
		Variables:   variables,
		Category:    strings.TrimSpace(input.Category),
	}
	if template.Category == "" {
		template.Category = "custom"
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}

	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}
	s.logger.Info("template created",
		zap.String("templateId", template.ID),
		zap.String("accountId", accountID),
	)
	return template, nil
}

// List returns the account's own templates plus the most used public
// ones.
func (s *TemplateService) List(ctx context.Context, accountID string) (owned []domain.Template, public []domain.Template, err error) {
	owned, err = s.templates.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	public, err = s.templates.ListPublic(ctx, publicTemplatesLimit)
	if err != nil {
		return nil, nil, err
	}
	return owned, public, nil
}

// Update applies the input to an owned template. Empty input fields
// keep their current values; a nil Variables slice keeps the stored
// declarations.
func (s *TemplateService) Update(ctx context.Context, accountID string, templateID string, input TemplateInput) (*domain.Template, error) {
	template, err := s.GetOwned(ctx, accountID, templateID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		template.Name = name
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		template.Description = description
	}
	if input.Content != "" {
		template.Content = input.Content
	}
	if input.Variables != nil {
		variables, err := encodeVariables(input.Variables)
		if err != nil {
			return nil, err
		}
		template.Variables = variables
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		template.Category = category
	}

	if err := template.Validate(); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// Delete removes an owned template. Public templates of other accounts
// read as missing here like everywhere else.
func (s *TemplateService) Delete(ctx context.Context, accountID string, templateID string) error {
	return s.templates.Delete(ctx, accountID, strings.TrimSpace(templateID))
}

// GetOwned returns a template only when the account owns it.
func (s *TemplateService) GetOwned(ctx context.Context, accountID string, templateID string) (*domain.Template, error) {
	template, err := s.templates.GetByID(ctx, strings.TrimSpace(templateID))
	if err != nil {
		return nil, err
	}
	if template.AccountID != accountID {
		return nil, fmt.Errorf("%w: template %s", domain.ErrNotFound, templateID)
	}
	return template, nil
}

// ResolveForRender returns the template and its rendered body for a
// templated dispatch. The visibility check precedes rendering: the
// caller must own the template or it must be public.
func (s *TemplateService) ResolveForRender(
	ctx context.Context,
	accountID string,
	templateID string,
	variables map[string]string,
) (*domain.Template, string, error) {
	template, err := s.templates.GetByID(ctx, strings.TrimSpace(templateID))
	if err != nil {
		return nil, "", err
	}

	if !template.UsableBy(accountID) {
		return nil, "", fmt.Errorf("%w: template %s is private", domain.ErrForbidden, templateID)
	}

	return template, template.Render(variables), nil
}

// CopyPublic duplicates a public template into the caller's account as
// an independent private template. A second copy of the same template
// by the same account is rejected.
func (s *TemplateService) CopyPublic(ctx context.Context, accountID string, templateID string) (*domain.Template, error) {
	source, err := s.templates.GetByID(ctx, strings.TrimSpace(templateID))
	if err != nil {
		return nil, err
	}
	if !source.IsPublic {
		return nil, fmt.Errorf("%w: public template %s", domain.ErrNotFound, templateID)
	}

	copyName := source.Name + domain.CopySuffix
	existing, err := s.templates.GetByAccountAndName(ctx, accountID, copyName)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: template already copied", domain.ErrValidation)
	}

	clone := source.CopyFor(accountID, uuid.NewString())
	if err := s.templates.Create(ctx, &clone); err != nil {
		return nil, err
	}

	s.logger.Info("public template copied",
		zap.String("sourceId", source.ID),
		zap.String("templateId", clone.ID),
		zap.String("accountId", accountID),
	)
	return &clone, nil
}

// encodeVariables normalizes declared variable names to the stored
// JSON array form; nil and empty both encode as "[]".
func encodeVariables(variables []string) (string, error) {
	if variables == nil {
		variables = []string{}
	}
	encoded, err := json.Marshal(variables)
	if err != nil {
		return "", fmt.Errorf("encode template variables: %w", err)
	}
	return string(encoded), nil
}

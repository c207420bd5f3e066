package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/service"
)

type TemplateService interface {
	Create(ctx context.Context, accountID string, input service.TemplateInput) (*domain.Template, error)
	List(ctx context.Context, accountID string) (owned []domain.Template, public []domain.Template, err error)
	Update(ctx context.Context, accountID string, templateID string, input service.TemplateInput) (*domain.Template, error)
	Delete(ctx context.Context, accountID string, templateID string) error
	GetOwned(ctx context.Context, accountID string, templateID string) (*domain.Template, error)
	CopyPublic(ctx context.Context, accountID string, templateID string) (*domain.Template, error)
}

type TemplateHandler struct {
	service TemplateService
}

func NewTemplateHandler(service TemplateService) (*TemplateHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("template service is required")
	}
	return &TemplateHandler{service: service}, nil
}

func RegisterTemplateRoutes(router fiber.Router, h *TemplateHandler) {
	router.Get("/templates", h.ListTemplates)
	router.Post("/templates", h.CreateTemplate)
	router.Put("/templates/:id", h.UpdateTemplate)
	router.Delete("/templates/:id", h.DeleteTemplate)
	router.Get("/template/:id", h.GetTemplate)
	router.Post("/copy_template/:id", h.CopyTemplate)
}

type templateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Variables   []string `json:"variables"`
	Category    string   `json:"category"`
}

type templateResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Variables   []string  `json:"variables"`
	Category    string    `json:"category"`
	IsPublic    bool      `json:"is_public"`
	UsageCount  int64     `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *TemplateHandler) CreateTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	template, err := h.service.Create(c.Context(), accountFromCtx(c).ID, templateRequestToInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toTemplateResponse(template))
}

func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	owned, public, err := h.service.List(c.Context(), accountFromCtx(c).ID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"templates":        toTemplateResponses(owned),
		"public_templates": toTemplateResponses(public),
	})
}

func (h *TemplateHandler) UpdateTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := strings.TrimSpace(c.Params("id"))
	template, err := h.service.Update(c.Context(), accountFromCtx(c).ID, id, templateRequestToInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toTemplateResponse(template))
}

func (h *TemplateHandler) DeleteTemplate(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.Delete(c.Context(), accountFromCtx(c).ID, id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "template deleted"})
}

func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	template, err := h.service.GetOwned(c.Context(), accountFromCtx(c).ID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toTemplateResponse(template))
}

func (h *TemplateHandler) CopyTemplate(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	clone, err := h.service.CopyPublic(c.Context(), accountFromCtx(c).ID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "template copied",
		"template": toTemplateResponse(clone),
	})
}

func templateRequestToInput(req templateRequest) service.TemplateInput {
	return service.TemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Variables:   req.Variables,
		Category:    req.Category,
	}
}

func toTemplateResponse(t *domain.Template) templateResponse {
	if t == nil {
		return templateResponse{}
	}

	return templateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Content:     t.Content,
		Variables:   decodeVariables(t.Variables),
		Category:    t.Category,
		IsPublic:    t.IsPublic,
		UsageCount:  t.UsageCount,
		CreatedAt:   t.CreatedAt,
	}
}

func toTemplateResponses(templates []domain.Template) []templateResponse {
	responses := make([]templateResponse, 0, len(templates))
	for i := range templates {
		responses = append(responses, toTemplateResponse(&templates[i]))
	}
	return responses
}

// decodeVariables parses the stored JSON declaration list; anything
// unparseable reads as no declared variables.
func decodeVariables(raw string) []string {
	var variables []string
	if err := json.Unmarshal([]byte(raw), &variables); err != nil || variables == nil {
		return []string{}
	}
	return variables
}

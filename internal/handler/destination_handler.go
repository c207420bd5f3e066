package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkarci/notify-manager/internal/adapter"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/service"
)

type DestinationService interface {
	Create(ctx context.Context, accountID string, input service.DestinationInput) (*domain.Destination, error)
	List(ctx context.Context, accountID string) ([]domain.Destination, error)
	Update(ctx context.Context, accountID string, id string, input service.DestinationInput) (*domain.Destination, error)
	Delete(ctx context.Context, accountID string, id string) error
	Test(ctx context.Context, accountID string, id string) (*adapter.Outcome, error)
}

type DestinationHandler struct {
	service DestinationService
}

func NewDestinationHandler(service DestinationService) (*DestinationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("destination service is required")
	}
	return &DestinationHandler{service: service}, nil
}

func RegisterDestinationRoutes(router fiber.Router, h *DestinationHandler) {
	router.Get("/destinations", h.ListDestinations)
	router.Post("/destinations", h.CreateDestination)
	router.Put("/destinations/:id", h.UpdateDestination)
	router.Delete("/destinations/:id", h.DeleteDestination)
	router.Post("/destinations/:id/test", h.TestDestination)
}

type destinationRequest struct {
	Name     string  `json:"name"`
	Platform string  `json:"platform"`
	Endpoint string  `json:"endpoint"`
	Secret   *string `json:"secret"`
	IsActive *bool   `json:"is_active"`
}

type destinationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	Endpoint  string    `json:"endpoint"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *DestinationHandler) CreateDestination(c *fiber.Ctx) error {
	var req destinationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	destination, err := h.service.Create(c.Context(), accountFromCtx(c).ID, requestToInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toDestinationResponse(destination))
}

func (h *DestinationHandler) ListDestinations(c *fiber.Ctx) error {
	destinations, err := h.service.List(c.Context(), accountFromCtx(c).ID)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]destinationResponse, 0, len(destinations))
	for i := range destinations {
		responses = append(responses, toDestinationResponse(&destinations[i]))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"destinations": responses})
}

func (h *DestinationHandler) UpdateDestination(c *fiber.Ctx) error {
	var req destinationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := strings.TrimSpace(c.Params("id"))
	destination, err := h.service.Update(c.Context(), accountFromCtx(c).ID, id, requestToInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDestinationResponse(destination))
}

func (h *DestinationHandler) DeleteDestination(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.Delete(c.Context(), accountFromCtx(c).ID, id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "destination deleted"})
}

func (h *DestinationHandler) TestDestination(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	outcome, err := h.service.Test(c.Context(), accountFromCtx(c).ID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     outcome.Success,
		"status_code": outcome.StatusCode,
		"response":    outcome.Response,
	})
}

func requestToInput(req destinationRequest) service.DestinationInput {
	return service.DestinationInput{
		Name:     req.Name,
		Platform: req.Platform,
		Endpoint: req.Endpoint,
		Secret:   req.Secret,
		IsActive: req.IsActive,
	}
}

func toDestinationResponse(d *domain.Destination) destinationResponse {
	if d == nil {
		return destinationResponse{}
	}

	return destinationResponse{
		ID:        d.ID,
		Name:      d.Name,
		Platform:  d.Platform.String(),
		Endpoint:  d.Endpoint,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

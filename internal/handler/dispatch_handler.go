package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/service"
)

const recentLogsLimit = 10

type Dispatcher interface {
	Dispatch(ctx context.Context, account *domain.Account, message string, destinationName string, template *domain.Template) (*service.DispatchResult, error)
}

type TemplateRenderer interface {
	ResolveForRender(ctx context.Context, accountID string, templateID string, variables map[string]string) (*domain.Template, string, error)
}

type DeliveryLog interface {
	ListRecent(ctx context.Context, accountID string, limit int) ([]domain.DeliveryRecord, error)
}

type StatsProvider interface {
	Get(ctx context.Context, accountID string) (*domain.AccountStats, error)
}

type DispatchHandler struct {
	dispatcher Dispatcher
	templates  TemplateRenderer
	deliveries DeliveryLog
	stats      StatsProvider
}

func NewDispatchHandler(
	dispatcher Dispatcher,
	templates TemplateRenderer,
	deliveries DeliveryLog,
	stats StatsProvider,
) (*DispatchHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template renderer is required")
	}
	if deliveries == nil {
		return nil, fmt.Errorf("delivery log is required")
	}
	if stats == nil {
		return nil, fmt.Errorf("stats provider is required")
	}
	return &DispatchHandler{
		dispatcher: dispatcher,
		templates:  templates,
		deliveries: deliveries,
		stats:      stats,
	}, nil
}

func RegisterDispatchRoutes(router fiber.Router, h *DispatchHandler, rateLimit fiber.Handler) {
	if rateLimit == nil {
		rateLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Post("/send", rateLimit, h.Send)
	router.Post("/send_template", rateLimit, h.SendTemplate)
	router.Get("/recent_logs", h.RecentLogs)
	router.Get("/stats", h.Stats)
}

type sendRequest struct {
	Message string `json:"message"`
	// Platform carries the caller-chosen destination name used to
	// narrow the dispatch; empty means every active destination.
	Platform string `json:"platform"`
}

type sendTemplateRequest struct {
	TemplateID string            `json:"template_id"`
	Variables  map[string]string `json:"variables"`
	Platform   string            `json:"platform"`
}

type outcomeResponse struct {
	Platform     string `json:"platform"`
	PlatformType string `json:"platform_type"`
	Success      bool   `json:"success"`
	StatusCode   int    `json:"status_code"`
}

type deliveryRecordResponse struct {
	ID            string    `json:"id"`
	DestinationID string    `json:"destination_id"`
	TemplateID    *string   `json:"template_id,omitempty"`
	BatchID       string    `json:"batch_id"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	StatusCode    int       `json:"status_code"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

func (h *DispatchHandler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	account := accountFromCtx(c)
	result, err := h.dispatcher.Dispatch(c.Context(), account, req.Message, req.Platform, nil)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": dispatchSummary(result),
		"results": toOutcomeResponses(result),
	})
}

func (h *DispatchHandler) SendTemplate(c *fiber.Ctx) error {
	var req sendTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.TemplateID) == "" {
		return toHTTPError(fmt.Errorf("%w: template_id is required", domain.ErrValidation))
	}

	account := accountFromCtx(c)
	template, rendered, err := h.templates.ResolveForRender(c.Context(), account.ID, req.TemplateID, req.Variables)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.dispatcher.Dispatch(c.Context(), account, rendered, req.Platform, template)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  dispatchSummary(result),
		"template": template.Name,
		"results":  toOutcomeResponses(result),
	})
}

func (h *DispatchHandler) RecentLogs(c *fiber.Ctx) error {
	account := accountFromCtx(c)
	records, err := h.deliveries.ListRecent(c.Context(), account.ID, recentLogsLimit)
	if err != nil {
		return toHTTPError(err)
	}

	logs := make([]deliveryRecordResponse, 0, len(records))
	for _, record := range records {
		logs = append(logs, deliveryRecordResponse{
			ID:            record.ID,
			DestinationID: record.DestinationID,
			TemplateID:    record.TemplateID,
			BatchID:       record.BatchID,
			Message:       record.Message,
			Status:        record.Status.String(),
			StatusCode:    record.StatusCode,
			ErrorMessage:  record.ErrorMessage,
			SentAt:        record.SentAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"logs": logs})
}

func (h *DispatchHandler) Stats(c *fiber.Ctx) error {
	account := accountFromCtx(c)
	stats, err := h.stats.Get(c.Context(), account.ID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func toOutcomeResponses(result *service.DispatchResult) []outcomeResponse {
	responses := make([]outcomeResponse, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		responses = append(responses, outcomeResponse{
			Platform:     outcome.Destination,
			PlatformType: outcome.Platform,
			Success:      outcome.Success,
			StatusCode:   outcome.StatusCode,
		})
	}
	return responses
}

func dispatchSummary(result *service.DispatchResult) string {
	failed := 0
	for _, outcome := range result.Outcomes {
		if !outcome.Success {
			failed++
		}
	}
	if failed == 0 {
		return fmt.Sprintf("dispatched to %d destination(s)", len(result.Outcomes))
	}
	return fmt.Sprintf("dispatched to %d destination(s), %d failed", len(result.Outcomes), failed)
}

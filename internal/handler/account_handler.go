package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkarci/notify-manager/internal/domain"
)

type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*domain.Account, error)
}

type TokenService interface {
	Issue(ctx context.Context, accountID string) (token string, expiresAt time.Time, err error)
	Revoke(ctx context.Context, accountID string) error
}

type AccountHandler struct {
	accounts AccountService
	tokens   TokenService
}

func NewAccountHandler(accounts AccountService, tokens TokenService) (*AccountHandler, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account service is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	return &AccountHandler{accounts: accounts, tokens: tokens}, nil
}

// RegisterPublicAccountRoutes mounts the unauthenticated bootstrap
// endpoints. Register returns the account's first token; everything
// else requires it.
func RegisterPublicAccountRoutes(router fiber.Router, h *AccountHandler) {
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
}

// RegisterTokenRoutes mounts the authenticated token management
// endpoints.
func RegisterTokenRoutes(router fiber.Router, h *AccountHandler) {
	router.Post("/token/generate", h.GenerateToken)
	router.Post("/token/revoke", h.RevokeToken)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	account, err := h.accounts.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	token, expiresAt, err := h.tokens.Issue(c.Context(), account.ID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account_id": account.ID,
		"username":   account.Username,
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	account, err := h.accounts.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"account_id": account.ID,
		"username":   account.Username,
		"has_token":  account.APIToken != nil,
	})
}

func (h *AccountHandler) GenerateToken(c *fiber.Ctx) error {
	account := accountFromCtx(c)
	token, expiresAt, err := h.tokens.Issue(c.Context(), account.ID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (h *AccountHandler) RevokeToken(c *fiber.Ctx) error {
	account := accountFromCtx(c)
	if err := h.tokens.Revoke(c.Context(), account.ID); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "token revoked"})
}

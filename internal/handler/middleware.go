package handler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/ratelimit"
)

const accountLocalsKey = "account"

// TokenAuthenticator resolves a bearer token to an account.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Account, error)
}

// AuthMiddleware authenticates every request with an API token taken
// from the Authorization header, a JSON body field, or a query
// parameter, in that order. The resolved account is stored in locals
// for downstream handlers.
func AuthMiddleware(authenticator TokenAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, err := authenticator.Authenticate(c.Context(), requestToken(c))
		if err != nil {
			return toHTTPError(err)
		}

		c.Locals(accountLocalsKey, account)
		return c.Next()
	}
}

// RateLimitMiddleware gates requests per authenticated account. It
// must run after AuthMiddleware.
func RateLimitMiddleware(limiter ratelimit.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		account := accountFromCtx(c)
		if account == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authenticated account")
		}

		allowed, err := limiter.Allow(c.Context(), account.ID)
		if err != nil {
			return err
		}
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

func requestToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	if body := c.Body(); len(body) > 0 {
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Token) != "" {
			return strings.TrimSpace(payload.Token)
		}
	}

	return strings.TrimSpace(c.Query("token"))
}

func accountFromCtx(c *fiber.Ctx) *domain.Account {
	account, _ := c.Locals(accountLocalsKey).(*domain.Account)
	return account
}

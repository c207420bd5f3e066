package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/transport"
	"go.uber.org/zap"
)

type stubAccountService struct {
	registerFn func(ctx context.Context, username, email, password string) (*domain.Account, error)
	loginFn    func(ctx context.Context, username, password string) (*domain.Account, error)
}

func (s *stubAccountService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, username, email, password)
	}
	return nil, fmt.Errorf("not implemented")
}

func (s *stubAccountService) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, username, password)
	}
	return nil, fmt.Errorf("not implemented")
}

type stubTokenService struct {
	issueFn  func(ctx context.Context, accountID string) (string, time.Time, error)
	revokeFn func(ctx context.Context, accountID string) error
}

func (s *stubTokenService) Issue(ctx context.Context, accountID string) (string, time.Time, error) {
	if s.issueFn != nil {
		return s.issueFn(ctx, accountID)
	}
	return "", time.Time{}, fmt.Errorf("not implemented")
}

func (s *stubTokenService) Revoke(ctx context.Context, accountID string) error {
	if s.revokeFn != nil {
		return s.revokeFn(ctx, accountID)
	}
	return nil
}

func newAccountTestApp(t *testing.T, accounts AccountService, tokens TokenService) *fiber.App {
	t.Helper()

	if accounts == nil {
		accounts = &stubAccountService{}
	}
	if tokens == nil {
		tokens = &stubTokenService{}
	}

	h, err := NewAccountHandler(accounts, tokens)
	if err != nil {
		t.Fatalf("NewAccountHandler() error = %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
	api := app.Group("/api")
	RegisterPublicAccountRoutes(api, h)
	authed := api.Group("", AuthMiddleware(&stubAuthenticator{account: testAccount()}))
	RegisterTokenRoutes(authed, h)
	return app
}

func TestAccountIntegration_Register(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2027, 2, 1, 12, 0, 0, 0, time.UTC)
	accounts := &stubAccountService{
		registerFn: func(ctx context.Context, username, email, password string) (*domain.Account, error) {
			if username != "ops" || email != "ops@example.com" {
				t.Fatalf("register args = %s/%s", username, email)
			}
			return &domain.Account{ID: "acct-new", Username: username, Email: email, IsActive: true}, nil
		},
	}
	tokens := &stubTokenService{
		issueFn: func(ctx context.Context, accountID string) (string, time.Time, error) {
			if accountID != "acct-new" {
				t.Fatalf("issue for %s, want acct-new", accountID)
			}
			return "tok-first", expiresAt, nil
		},
	}
	app := newAccountTestApp(t, accounts, tokens)

	body := `{"username":"ops","email":"ops@example.com","password":"hunter22pass"}`
	resp, respBody := performRequest(t, app, http.MethodPost, "/api/register", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(respBody))
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["account_id"] != "acct-new" {
		t.Fatalf("account_id = %v, want acct-new", parsed["account_id"])
	}
	if parsed["token"] != "tok-first" {
		t.Fatalf("token = %v, want tok-first", parsed["token"])
	}
}

func TestAccountIntegration_RegisterValidation(t *testing.T) {
	t.Parallel()

	accounts := &stubAccountService{
		registerFn: func(ctx context.Context, username, email, password string) (*domain.Account, error) {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
		},
	}
	app := newAccountTestApp(t, accounts, nil)

	resp, _ := performRequest(t, app, http.MethodPost, "/api/register", `{"username":"ops","email":"ops@example.com","password":"short"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAccountIntegration_Login(t *testing.T) {
	t.Parallel()

	token := "tok-set"
	accounts := &stubAccountService{
		loginFn: func(ctx context.Context, username, password string) (*domain.Account, error) {
			if username == "ops" && password == "hunter22pass" {
				return &domain.Account{ID: "acct-1", Username: "ops", APIToken: &token, IsActive: true}, nil
			}
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		},
	}
	app := newAccountTestApp(t, accounts, nil)

	resp, body := performRequest(t, app, http.MethodPost, "/api/login", `{"username":"ops","password":"hunter22pass"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["has_token"] != true {
		t.Fatalf("has_token = %v, want true", parsed["has_token"])
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/api/login", `{"username":"ops","password":"wrong"}`)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for bad credentials", resp.StatusCode)
	}
}

func TestAccountIntegration_GenerateToken(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2027, 2, 1, 12, 0, 0, 0, time.UTC)
	tokens := &stubTokenService{
		issueFn: func(ctx context.Context, accountID string) (string, time.Time, error) {
			if accountID != "acct-1" {
				t.Fatalf("issue for %s, want the authenticated account", accountID)
			}
			return "tok-rotated", expiresAt, nil
		},
	}
	app := newAccountTestApp(t, nil, tokens)

	resp, body := performRequest(t, app, http.MethodPost, "/api/token/generate", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["token"] != "tok-rotated" {
		t.Fatalf("token = %v, want tok-rotated", parsed["token"])
	}
}

func TestAccountIntegration_RevokeToken(t *testing.T) {
	t.Parallel()

	revoked := false
	tokens := &stubTokenService{
		revokeFn: func(ctx context.Context, accountID string) error {
			revoked = accountID == "acct-1"
			return nil
		},
	}
	app := newAccountTestApp(t, nil, tokens)

	resp, body := performRequest(t, app, http.MethodPost, "/api/token/revoke", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	if !revoked {
		t.Fatal("revoke must target the authenticated account")
	}
}

func TestAccountIntegration_TokenRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	app := newAccountTestApp(t, nil, nil)

	req := newUnauthenticatedRequest(http.MethodPost, "/api/token/generate")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", resp.StatusCode)
	}
}

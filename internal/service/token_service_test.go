package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/umutkarci/notify-manager/internal/cache"
	"github.com/umutkarci/notify-manager/internal/domain"
	"go.uber.org/zap"
)

type fakeAccountRepo struct {
	accounts       map[string]*domain.Account
	setTokenErr    error
	lastLoginCalls int
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	if f.accounts == nil {
		f.accounts = map[string]*domain.Account{}
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if a, ok := f.accounts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
}

func (f *fakeAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	for _, a := range f.accounts {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, username)
}

func (f *fakeAccountRepo) GetByToken(ctx context.Context, token string) (*domain.Account, error) {
	for _, a := range f.accounts {
		if a.APIToken != nil && *a.APIToken == token {
			clone := *a
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown token", domain.ErrNotFound)
}

func (f *fakeAccountRepo) SetToken(ctx context.Context, id string, token string, expiresAt time.Time) error {
	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	a.APIToken = &token
	a.TokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeAccountRepo) ClearToken(ctx context.Context, id string) error {
	a, ok := f.accounts[id]
	if !ok {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	a.APIToken = nil
	a.TokenExpiresAt = nil
	return nil
}

func (f *fakeAccountRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	f.lastLoginCalls++
	return nil
}

func newTestTokenService(t *testing.T) (*TokenService, *fakeAccountRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	oldToken := "old-token"
	accounts := &fakeAccountRepo{accounts: map[string]*domain.Account{
		"acct-1": {
			ID:       "acct-1",
			Username: "ops",
			Email:    "ops@example.com",
			APIToken: &oldToken,
			IsActive: true,
		},
	}}

	s, err := NewTokenService(accounts, cache.New(client, zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return s, accounts, mr
}

func TestTokenServiceIssueRotates(t *testing.T) {
	t.Parallel()

	s, accounts, mr := newTestTokenService(t)
	mr.Set("api_token:old-token", `{"found":true}`)

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issuedAt }

	token, expiresAt, err := s.Issue(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" || token == "old-token" {
		t.Fatalf("token = %q, want a fresh value", token)
	}
	if want := issuedAt.Add(365 * 24 * time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
	}

	stored := accounts.accounts["acct-1"]
	if stored.APIToken == nil || *stored.APIToken != token {
		t.Fatal("store must hold the new token")
	}

	// The previous token's cache entry must be gone so it cannot
	// authenticate from a stale snapshot.
	if mr.Exists("api_token:old-token") {
		t.Fatal("old token cache entry must be evicted")
	}
}

func TestTokenServiceIssueUniquePerCall(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestTokenService(t)

	first, _, err := s.Issue(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	second, _, err := s.Issue(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if first == second {
		t.Fatal("consecutive tokens must differ")
	}
}

func TestTokenServiceIssueUnknownAccount(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestTokenService(t)

	if _, _, err := s.Issue(context.Background(), "acct-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Issue() error = %v, want ErrNotFound", err)
	}
}

func TestTokenServiceIssueStoreFailure(t *testing.T) {
	t.Parallel()

	s, accounts, _ := newTestTokenService(t)
	accounts.setTokenErr = errors.New("connection reset")

	if _, _, err := s.Issue(context.Background(), "acct-1"); err == nil {
		t.Fatal("Issue() expected error when the store write fails")
	}
}

func TestTokenServiceRevoke(t *testing.T) {
	t.Parallel()

	s, accounts, mr := newTestTokenService(t)
	mr.Set("api_token:old-token", `{"found":true}`)

	if err := s.Revoke(context.Background(), "acct-1"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	stored := accounts.accounts["acct-1"]
	if stored.APIToken != nil || stored.TokenExpiresAt != nil {
		t.Fatal("store must no longer hold a token")
	}
	if mr.Exists("api_token:old-token") {
		t.Fatal("revoked token cache entry must be evicted")
	}
}

func TestTokenServiceRevokeWithoutToken(t *testing.T) {
	t.Parallel()

	s, accounts, _ := newTestTokenService(t)
	accounts.accounts["acct-1"].APIToken = nil

	if err := s.Revoke(context.Background(), "acct-1"); err != nil {
		t.Fatalf("Revoke() error = %v, revoking a token-less account must be a no-op", err)
	}
}

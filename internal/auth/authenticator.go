// Package auth validates bearer credentials against the account store
// through a time-bounded Redis cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/umutkarci/notify-manager/internal/cache"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/observability"
	"go.uber.org/zap"
)

// AccountStore is the subset of the account repository the
// authenticator needs.
type AccountStore interface {
	GetByToken(ctx context.Context, token string) (*domain.Account, error)
}

// Authenticator resolves an API token to an account, consulting the
// cache first and populating it on miss. The cache may serve a
// positive snapshot for up to its TTL past the credential's nominal
// expiry; that bounded staleness is deliberate.
type Authenticator struct {
	accounts AccountStore
	cache    *cache.Cache
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewAuthenticator(accounts AccountStore, c *cache.Cache, logger *zap.Logger) (*Authenticator, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Authenticator{
		accounts: accounts,
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (a *Authenticator) SetMetrics(metrics *observability.Metrics) {
	if a == nil {
		return
	}
	a.metrics = metrics
}

// Authenticate returns the account owning the token, or
// domain.ErrUnauthorized. The error never distinguishes a malformed
// token from a failed lookup.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing api token", domain.ErrUnauthorized)
	}

	lookup := a.cache.GetAccount(ctx, token)
	if lookup.Hit {
		if lookup.Invalid {
			a.metrics.IncAuthCacheLookup("invalid")
			return nil, fmt.Errorf("%w: invalid or expired api token", domain.ErrUnauthorized)
		}
		a.metrics.IncAuthCacheLookup("hit")
		return lookup.Account, nil
	}
	a.metrics.IncAuthCacheLookup("miss")

	account, err := a.accounts.GetByToken(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up api token: %w", err)
	}

	if account == nil || !account.CredentialValidAt(a.now()) {
		a.cache.SetInvalidToken(ctx, token)
		return nil, fmt.Errorf("%w: invalid or expired api token", domain.ErrUnauthorized)
	}

	a.cache.SetAccount(ctx, token, account)
	return account, nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/umutkarci/notify-manager/internal/cache"
	"github.com/umutkarci/notify-manager/internal/repository"
	"go.uber.org/zap"
)

const tokenTTL = 365 * 24 * time.Hour

// TokenService issues and revokes API tokens. Every mutation evicts
// the affected cache entries synchronously so a revoked or rotated
// token stops authenticating before the call returns.
type TokenService struct {
	accounts repository.AccountRepository
	cache    *cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

func NewTokenService(accounts repository.AccountRepository, c *cache.Cache, logger *zap.Logger) (*TokenService, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		accounts: accounts,
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Issue generates a fresh token for the account, replacing any
// previous one. The old token's cache entry is evicted so it cannot
// authenticate from a stale snapshot.
func (s *TokenService) Issue(ctx context.Context, accountID string) (token string, expiresAt time.Time, err error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", time.Time{}, err
	}

	token, err = generateToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}
	expiresAt = s.now().UTC().Add(tokenTTL)

	if err := s.accounts.SetToken(ctx, accountID, token, expiresAt); err != nil {
		return "", time.Time{}, err
	}

	if account.APIToken != nil {
		if err := s.cache.EvictToken(ctx, *account.APIToken); err != nil {
			return "", time.Time{}, err
		}
	}
	if err := s.cache.EvictToken(ctx, token); err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info("api token issued",
		zap.String("accountId", accountID),
		zap.Time("expiresAt", expiresAt),
	)
	return token, expiresAt, nil
}

// Revoke clears the account's token and evicts it from the cache.
func (s *TokenService) Revoke(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.accounts.ClearToken(ctx, accountID); err != nil {
		return err
	}
	if account.APIToken != nil {
		if err := s.cache.EvictToken(ctx, *account.APIToken); err != nil {
			return err
		}
	}

	s.logger.Info("api token revoked", zap.String("accountId", accountID))
	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

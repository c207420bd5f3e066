// Package cache wraps Redis as a read-through cache for authentication
// and statistics lookups. The cache is an optimization only: every
// backend error is logged and reported as a miss so callers degrade to
// direct store queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/umutkarci/notify-manager/internal/domain"
	"go.uber.org/zap"
)

const (
	tokenKeyPrefix = "api_token:"
	statsKeyPrefix = "account_stats:"

	// invalidSentinel marks a token confirmed invalid, distinct from a
	// plain cache miss.
	invalidSentinel = "invalid"

	// AccountTTL bounds how long a positive account snapshot may be
	// served without re-validation against the store.
	AccountTTL = 15 * time.Minute

	// SentinelTTL bounds how long a negative lookup is remembered.
	SentinelTTL = 5 * time.Minute

	// StatsTTL bounds staleness of cached aggregate statistics.
	StatsTTL = 5 * time.Minute
)

// AccountLookup is the result of a token cache read.
type AccountLookup struct {
	// Hit is false on cache miss or backend failure.
	Hit bool
	// Invalid is true when the sentinel was found: the token is known
	// bad and the store must not be consulted.
	Invalid bool
	// Account is the snapshot stored for a valid token.
	Account *domain.Account
}

// Cache is a thin Redis wrapper. A nil *Cache or a nil client is
// valid and behaves as an always-miss cache.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func New(client *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// GetAccount reads the cached state for a token: miss, sentinel, or a
// JSON account snapshot.
func (c *Cache) GetAccount(ctx context.Context, token string) AccountLookup {
	if !c.enabled() {
		return AccountLookup{}
	}

	raw, err := c.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return AccountLookup{}
	}
	if err != nil {
		c.logger.Warn("auth cache read failed, falling back to store", zap.Error(err))
		return AccountLookup{}
	}

	if raw == invalidSentinel {
		return AccountLookup{Hit: true, Invalid: true}
	}

	var account domain.Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		c.logger.Warn("auth cache entry is corrupt, treating as miss", zap.Error(err))
		return AccountLookup{}
	}

	return AccountLookup{Hit: true, Account: &account}
}

// SetAccount stores a JSON snapshot of a validated account.
func (c *Cache) SetAccount(ctx context.Context, token string, account *domain.Account) {
	if !c.enabled() || account == nil {
		return
	}

	payload, err := json.Marshal(account)
	if err != nil {
		c.logger.Warn("failed to encode account snapshot", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, tokenKeyPrefix+token, payload, AccountTTL).Err(); err != nil {
		c.logger.Warn("auth cache write failed", zap.Error(err))
	}
}

// SetInvalidToken remembers a negative lookup so repeated bad tokens
// do not hammer the store.
func (c *Cache) SetInvalidToken(ctx context.Context, token string) {
	if !c.enabled() {
		return
	}

	if err := c.client.Set(ctx, tokenKeyPrefix+token, invalidSentinel, SentinelTTL).Err(); err != nil {
		c.logger.Warn("auth cache sentinel write failed", zap.Error(err))
	}
}

// EvictToken removes a token entry. Called synchronously whenever the
// underlying credential changes so neither a stale positive nor a
// stale negative survives the mutation.
func (c *Cache) EvictToken(ctx context.Context, token string) error {
	if !c.enabled() || token == "" {
		return nil
	}

	if err := c.client.Del(ctx, tokenKeyPrefix+token).Err(); err != nil {
		c.logger.Warn("auth cache eviction failed", zap.Error(err))
		return fmt.Errorf("failed to evict token cache entry: %w", err)
	}
	return nil
}

// GetStats returns cached aggregate statistics for an account.
func (c *Cache) GetStats(ctx context.Context, accountID string) (*domain.AccountStats, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.client.Get(ctx, statsKeyPrefix+accountID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("stats cache read failed", zap.Error(err))
		return nil, false
	}

	var stats domain.AccountStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		c.logger.Warn("stats cache entry is corrupt, treating as miss", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (c *Cache) SetStats(ctx context.Context, accountID string, stats *domain.AccountStats) {
	if !c.enabled() || stats == nil {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKeyPrefix+accountID, payload, StatsTTL).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.Error(err))
	}
}

// EvictStats drops cached statistics after a dispatch writes new
// delivery records.
func (c *Cache) EvictStats(ctx context.Context, accountID string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, statsKeyPrefix+accountID).Err(); err != nil {
		c.logger.Warn("stats cache eviction failed", zap.Error(err))
	}
}

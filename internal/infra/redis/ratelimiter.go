package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/umutkarci/notify-manager/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLimitPerMin int64 = 120
	windowSeconds            = 60
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter is a distributed fixed-window limiter keyed by
// account. Limiting is an optimization, never a gate on availability:
// any Redis failure is logged and the request allowed through.
type RedisRateLimiter struct {
	client      *goredis.Client
	limitPerMin int64
	logger      *zap.Logger
	now         func() time.Time
	script      *goredis.Script
}

func NewRedisRateLimiter(client *goredis.Client, limitPerMin int, logger *zap.Logger) (*RedisRateLimiter, error) {
	return newRedisRateLimiter(client, int64(limitPerMin), logger, time.Now)
}

func newRedisRateLimiter(
	client *goredis.Client,
	limitPerMin int64,
	logger *zap.Logger,
	nowFn func() time.Time,
) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limitPerMin <= 0 {
		limitPerMin = defaultLimitPerMin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &RedisRateLimiter{
		client:      client,
		limitPerMin: limitPerMin,
		logger:      logger,
		now:         nowFn,
		script:      allowScript,
	}, nil
}

func (r *RedisRateLimiter) Allow(ctx context.Context, accountID string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return true, nil
	}

	normalized := strings.TrimSpace(accountID)
	if normalized == "" {
		return false, fmt.Errorf("account id is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	window := r.now().UTC().Unix() / windowSeconds
	key := fmt.Sprintf("ratelimit:%s:%d", normalized, window)
	result, err := r.script.Run(ctx, r.client, []string{key}, r.limitPerMin, windowSeconds).Int()
	if err != nil {
		r.logger.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true, nil
	}

	return result == 1, nil
}

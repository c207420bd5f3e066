package ratelimit

import "context"

// RateLimiter gates dispatch requests per account.
type RateLimiter interface {
	// Allow reports whether the account may dispatch now. A backend
	// failure must not block dispatching: implementations fail open.
	Allow(ctx context.Context, accountID string) (bool, error)
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginRateLimiter throttles login attempts per username using a Redis
// counter with a rolling window. A nil client disables limiting.
type LoginRateLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginRateLimiter constructs the limiter.
func NewLoginRateLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginRateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginRateLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow records an attempt and reports whether it is within the limit.
// Redis being unreachable fails open so logins keep working.
func (l *LoginRateLimiter) Allow(ctx context.Context, username string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := fmt.Sprintf("login_attempts:%s", username)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		_ = l.client.Expire(ctx, key, l.window).Err()
	}
	return count <= int64(l.maxAttempts)
}

// Reset clears the attempt counter after a successful login.
func (l *LoginRateLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}
	_ = l.client.Del(ctx, fmt.Sprintf("login_attempts:%s", username)).Err()
}

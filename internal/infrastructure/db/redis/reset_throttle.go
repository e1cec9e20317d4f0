package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultThrottleTTL = 15 * time.Minute

// ResetThrottle remembers password reset requests per email.
// Key format: ecivil:reset:<email>
type ResetThrottle struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetThrottle creates a ResetThrottle wrapping the given Redis client.
func NewResetThrottle(client *redis.Client, ttl time.Duration) *ResetThrottle {
	if ttl <= 0 {
		ttl = defaultThrottleTTL
	}
	return &ResetThrottle{client: client, ttl: ttl}
}

// IsThrottled reports whether a reset for email was requested within the window.
func (t *ResetThrottle) IsThrottled(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Exists(ctx, t.key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle check: %w", err)
	}
	return n > 0, nil
}

// Mark opens the throttle window for email.
func (t *ResetThrottle) Mark(ctx context.Context, email string) error {
	return t.client.Set(ctx, t.key(email), "1", t.ttl).Err()
}

func (t *ResetThrottle) key(email string) string {
	return "ecivil:reset:" + email
}

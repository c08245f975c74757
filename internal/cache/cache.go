package cache

import (
	"context"
	"time"
)

// TokenCache stores short-lived provider credentials. Get returns ("", nil)
// on a miss.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

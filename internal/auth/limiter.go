package auth

import (
	"context"
	"strings"
	"time"
)

const loginFailKeyPrefix = "login_fail:"

// CounterStore is the subset of cache.Client the limiter needs.
type CounterStore interface {
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}

// AttemptLimiter throttles repeated failed logins per identifier.
type AttemptLimiter interface {
	Allowed(ctx context.Context, identifier string) bool
	RecordFailure(ctx context.Context, identifier string)
	Reset(ctx context.Context, identifier string)
}

// LoginLimiter counts failures in a CounterStore. Counters expire after
// window; once maxAttempts is reached logins are refused until then.
type LoginLimiter struct {
	store       CounterStore
	maxAttempts int
	window      time.Duration
}

var _ AttemptLimiter = (*LoginLimiter)(nil)

// NewLoginLimiter creates a limiter. maxAttempts <= 0 disables throttling.
func NewLoginLimiter(store CounterStore, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{store: store, maxAttempts: maxAttempts, window: window}
}

func (l *LoginLimiter) key(identifier string) string {
	return loginFailKeyPrefix + strings.ToLower(strings.TrimSpace(identifier))
}

func (l *LoginLimiter) Allowed(ctx context.Context, identifier string) bool {
	if l.maxAttempts <= 0 {
		return true
	}
	n, err := l.store.GetInt(ctx, l.key(identifier))
	if err != nil {
		return true
	}
	return n < int64(l.maxAttempts)
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) {
	if l.maxAttempts <= 0 {
		return
	}
	_, _ = l.store.Incr(ctx, l.key(identifier), l.window)
}

func (l *LoginLimiter) Reset(ctx context.Context, identifier string) {
	_ = l.store.Delete(ctx, l.key(identifier))
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type memoryCounters struct {
	values map[string]int64
	ttls   map[string]time.Duration
}

func newMemoryCounters() *memoryCounters {
	return &memoryCounters{values: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCounters) GetInt(_ context.Context, key string) (int64, error) {
	return m.values[key], nil
}

func (m *memoryCounters) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.values[key]++
	if m.values[key] == 1 {
		m.ttls[key] = ttl
	}
	return m.values[key], nil
}

func (m *memoryCounters) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestLoginLimiter(t *testing.T) {
	store := newMemoryCounters()
	l := NewLoginLimiter(store, 3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allowed(ctx, "Alice"))
		l.RecordFailure(ctx, "Alice")
	}
	assert.False(t, l.Allowed(ctx, "alice"))
	assert.True(t, l.Allowed(ctx, "bob"))
	assert.Equal(t, 15*time.Minute, store.ttls["login_fail:alice"])

	l.Reset(ctx, " ALICE ")
	assert.True(t, l.Allowed(ctx, "alice"))
}

func TestLoginLimiter_Disabled(t *testing.T) {
	store := newMemoryCounters()
	l := NewLoginLimiter(store, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		l.RecordFailure(ctx, "alice")
	}
	assert.True(t, l.Allowed(ctx, "alice"))
	assert.Empty(t, store.values)
}

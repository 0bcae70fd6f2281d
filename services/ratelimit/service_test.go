package ratelimit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScopeKey(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("without user ID", func(t *testing.T) {
		assert.Equal(t, "org:"+orgID.String(), ScopeKey(orgID, nil))
	})

	t.Run("with user ID", func(t *testing.T) {
		assert.Equal(t, "org:"+orgID.String()+":user:"+userID.String(), ScopeKey(orgID, &userID))
	})
}

func TestLimiter_Allow(t *testing.T) {
	clock := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)
	limiter := PerMinute(3, time.Hour)
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("a"), "event %d", i)
	}
	assert.False(t, limiter.Allow("a"))

	// other keys have their own bucket
	assert.True(t, limiter.Allow("b"))

	// one token refills every 20 seconds
	clock = clock.Add(21 * time.Second)
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
}

func TestLimiter_RetryAfter(t *testing.T) {
	assert.Equal(t, 20*time.Second, PerMinute(3, time.Hour).RetryAfter())
	assert.Equal(t, 100*time.Millisecond, NewLimiter(10, 20, time.Hour).RetryAfter())
}

func TestLimiter_Sweep(t *testing.T) {
	clock := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)
	limiter := NewLimiter(1, 1, time.Minute)
	limiter.now = func() time.Time { return clock }

	limiter.Allow("old")
	clock = clock.Add(2 * time.Minute)
	limiter.Allow("fresh")

	assert.Equal(t, 1, limiter.Sweep())
	assert.Equal(t, 1, limiter.Size())
}

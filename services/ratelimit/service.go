package ratelimit

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per scope key
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing perSecond events with the given burst per key.
// Buckets unused for idleTTL are dropped by Sweep.
func NewLimiter(perSecond float64, burst int, idleTTL time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// PerMinute creates a limiter allowing n events per minute, all of them in a burst
func PerMinute(n int, idleTTL time.Duration) *Limiter {
	return NewLimiter(float64(n)/60, n, idleTTL)
}

// ScopeKey builds a limiter key from an organization and optional user
func ScopeKey(orgID uuid.UUID, userID *uuid.UUID) string {
	var b strings.Builder
	b.WriteString("org:")
	b.WriteString(orgID.String())
	if userID != nil {
		b.WriteString(":user:")
		b.WriteString(userID.String())
	}
	return b.String()
}

// Allow reports whether an event for key may happen now
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// RetryAfter estimates how long until key gets a token again
func (l *Limiter) RetryAfter() time.Duration {
	if l.limit <= 0 {
		return time.Minute
	}
	return time.Duration(math.Round(float64(time.Second) / float64(l.limit)))
}

// Sweep drops buckets idle for longer than the idle TTL and returns how many were removed
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

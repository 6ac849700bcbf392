// Package ratelimit provides a per-key token bucket limiter for a single process.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// GlobalKey is used when the caller has no identity.
const GlobalKey = "global"

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	// RetryAfter is how long until a token is available again. Zero when allowed.
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per client key. Each bucket holds
// `requests` tokens and refills them evenly over `window`.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// New creates a KeyedLimiter allowing requests per window for each key.
func New(requests int, window time.Duration) *KeyedLimiter {
	return newWithClock(requests, window, time.Now)
}

func newWithClock(requests int, window time.Duration, now func() time.Time) *KeyedLimiter {
	if requests < 1 {
		requests = 1
	}
	return &KeyedLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		now:     now,
	}
}

// Allow consumes one token for key if available.
func (l *KeyedLimiter) Allow(key string) Decision {
	if key == "" {
		key = GlobalKey
	}
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	var retryAfter time.Duration
	if !allowed {
		missing := 1 - b.limiter.TokensAt(now)
		retryAfter = time.Duration(missing / float64(l.limit) * float64(time.Second))
	}
	l.mu.Unlock()

	return Decision{Allowed: allowed, RetryAfter: retryAfter}
}

// Sweep drops buckets not used for longer than idle and returns how many were removed.
func (l *KeyedLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a simple token bucket rate limiter
type TokenBucket struct {
	mu           sync.Mutex
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillRate   int           // Tokens added per refillPeriod
	refillPeriod time.Duration // Period refillRate applies to
	lastRefill   time.Time
	lastSeen     time.Time
	now          func() time.Time
}

// NewTokenBucket creates a full bucket that gains refillRate tokens every refillPeriod.
func NewTokenBucket(capacity, refillRate int, refillPeriod time.Duration) *TokenBucket {
	return newTokenBucket(capacity, refillRate, refillPeriod, time.Now)
}

func newTokenBucket(capacity, refillRate int, refillPeriod time.Duration, now func() time.Time) *TokenBucket {
	if refillPeriod <= 0 {
		refillPeriod = time.Second
	}
	t := now()
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		lastRefill:   t,
		lastSeen:     t,
		now:          now,
	}
}

// Allow consumes a token if one is available
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN consumes n tokens if that many are available
func (tb *TokenBucket) AllowN(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.lastSeen = tb.now()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// Tokens returns the current number of available tokens
func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// RetryAfter is how long until the next token is available.
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens > 0 || tb.refillRate <= 0 {
		return 0
	}
	perToken := tb.refillPeriod / time.Duration(tb.refillRate)
	wait := perToken - tb.now().Sub(tb.lastRefill)
	if wait < 0 {
		return 0
	}
	return wait
}

// refill must be called with the lock held
func (tb *TokenBucket) refill() {
	if tb.refillRate <= 0 {
		return
	}

	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)
	periods := float64(elapsed) / float64(tb.refillPeriod)
	tokensToAdd := int(periods * float64(tb.refillRate))

	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}

func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastSeen.Before(cutoff)
}

// RateLimiterCollection keeps one bucket per client
type RateLimiterCollection struct {
	mu           sync.RWMutex
	buckets      map[string]*TokenBucket
	capacity     int
	refillRate   int
	refillPeriod time.Duration

	lastCleanup     time.Time
	cleanupInterval time.Duration
	clientTTL       time.Duration
	now             func() time.Time
}

// NewRateLimiterCollection creates a collection; buckets idle for longer
// than clientTTL are dropped at most once per cleanupInterval.
func NewRateLimiterCollection(capacity, refillRate int, refillPeriod, cleanupInterval, clientTTL time.Duration) *RateLimiterCollection {
	return newRateLimiterCollection(capacity, refillRate, refillPeriod, cleanupInterval, clientTTL, time.Now)
}

func newRateLimiterCollection(capacity, refillRate int, refillPeriod, cleanupInterval, clientTTL time.Duration, now func() time.Time) *RateLimiterCollection {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	if clientTTL <= 0 {
		clientTTL = 10 * time.Minute
	}
	return &RateLimiterCollection{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillRate:      refillRate,
		refillPeriod:    refillPeriod,
		lastCleanup:     now(),
		cleanupInterval: cleanupInterval,
		clientTTL:       clientTTL,
		now:             now,
	}
}

// Allow checks if a request from the given client is allowed
func (rlc *RateLimiterCollection) Allow(clientID string) bool {
	return rlc.getBucket(clientID).Allow()
}

// Tokens returns available tokens for the given client
func (rlc *RateLimiterCollection) Tokens(clientID string) int {
	return rlc.getBucket(clientID).Tokens()
}

// RetryAfter returns the wait until the client's next token.
func (rlc *RateLimiterCollection) RetryAfter(clientID string) time.Duration {
	return rlc.getBucket(clientID).RetryAfter()
}

// Clients returns the number of tracked clients
func (rlc *RateLimiterCollection) Clients() int {
	rlc.mu.RLock()
	defer rlc.mu.RUnlock()
	return len(rlc.buckets)
}

func (rlc *RateLimiterCollection) getBucket(clientID string) *TokenBucket {
	rlc.mu.RLock()
	bucket, exists := rlc.buckets[clientID]
	rlc.mu.RUnlock()

	if exists {
		return bucket
	}

	rlc.mu.Lock()
	defer rlc.mu.Unlock()

	// Another goroutine might have created it
	if bucket, exists := rlc.buckets[clientID]; exists {
		return bucket
	}

	rlc.maybeCleanup()

	bucket = newTokenBucket(rlc.capacity, rlc.refillRate, rlc.refillPeriod, rlc.now)
	rlc.buckets[clientID] = bucket
	return bucket
}

// maybeCleanup must be called with the write lock held
func (rlc *RateLimiterCollection) maybeCleanup() {
	now := rlc.now()
	if now.Sub(rlc.lastCleanup) < rlc.cleanupInterval {
		return
	}

	cutoff := now.Add(-rlc.clientTTL)
	for clientID, bucket := range rlc.buckets {
		if bucket.idleSince(cutoff) {
			delete(rlc.buckets, clientID)
		}
	}

	rlc.lastCleanup = now
}

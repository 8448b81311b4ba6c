package infrastructure

import (
	"sync"
	"time"
)

// ReplyRateLimiter implements token bucket rate limiting per session,
// keeping one agent from flooding a customer thread through the webhook.
type ReplyRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*tokenBucket
	rate        float64 // tokens per second
	maxTokens   float64 // burst capacity
	cleanupTick time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewReplyRateLimiter creates a rate limiter with specified rate and burst
// rate: replies per second allowed per session
// burst: maximum burst capacity
func NewReplyRateLimiter(rate float64, burst int) *ReplyRateLimiter {
	rl := &ReplyRateLimiter{
		buckets:     make(map[string]*tokenBucket),
		rate:        rate,
		maxTokens:   float64(burst),
		cleanupTick: 5 * time.Minute,
		done:        make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a reply may be dispatched to the session (consumes 1
// token if allowed).
func (rl *ReplyRateLimiter) Allow(sessionID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[sessionID]
	now := time.Now()

	if !exists {
		rl.buckets[sessionID] = &tokenBucket{
			tokens:     rl.maxTokens - 1,
			lastUpdate: now,
		}
		return true
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(bucket.lastUpdate).Seconds()
	bucket.tokens += elapsed * rl.rate
	if bucket.tokens > rl.maxTokens {
		bucket.tokens = rl.maxTokens
	}
	bucket.lastUpdate = now

	if bucket.tokens >= 1 {
		bucket.tokens -= 1
		return true
	}

	return false
}

// Reset removes rate limit state for a session.
func (rl *ReplyRateLimiter) Reset(sessionID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, sessionID)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (rl *ReplyRateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
	})
}

// cleanup removes stale buckets periodically
func (rl *ReplyRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for sessionID, bucket := range rl.buckets {
				if now.Sub(bucket.lastUpdate) > 10*time.Minute {
					delete(rl.buckets, sessionID)
				}
			}
			rl.mu.Unlock()
		}
	}
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizgen/quizgen-backend/internal/response"
)

// RateLimiter is a per-key token bucket. Buckets refill fully once per interval.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	interval time.Duration
	keyFunc  func(c *gin.Context) string
	now      func() time.Time
}

type visitor struct {
	tokens   int
	refilled time.Time
	lastSeen time.Time
}

// NewRateLimiter allows rate requests per interval for each client IP.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		keyFunc:  func(c *gin.Context) string { return c.ClientIP() },
		now:      time.Now,
	}
}

// KeyBy buckets requests by key instead of client IP. Empty keys fall back to the IP.
func (rl *RateLimiter) KeyBy(key func(c *gin.Context) string) *RateLimiter {
	rl.keyFunc = func(c *gin.Context) string {
		if k := key(c); k != "" {
			return k
		}
		return c.ClientIP()
	}
	return rl
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{tokens: rl.rate, refilled: now}
		rl.visitors[key] = v
	}
	if periods := int(now.Sub(v.refilled) / rl.interval); periods > 0 {
		v.tokens = rl.rate
		v.refilled = v.refilled.Add(time.Duration(periods) * rl.interval)
	}
	v.lastSeen = now

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(rl.keyFunc(c)) {
			c.Header("Retry-After", retryAfter(rl.interval))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// StartCleanup drops idle buckets every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-3 * rl.interval)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

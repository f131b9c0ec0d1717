package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const limiterIdleTTL = time.Hour

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter hands out one token bucket per caller, keyed by user id when the
// request is authenticated and by client IP otherwise.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow spends a token for key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = rl.now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Cleanup forgets callers idle for longer than an hour and returns how many
// were dropped.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterIdleTTL)
	removed := 0
	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked callers.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := CurrentUserID(c); userID != "" {
			key = "user:" + userID
		}

		if !rl.Allow(key) {
			telemetry.GetContextualLogger(c.Request.Context()).
				WithField("limiter_key", key).
				Warn("Rate limit exceeded")
			_ = c.Error(errors.NewRateLimitError(rl.burst, "1s"))
			c.Abort()
			return
		}
		c.Next()
	}
}

package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// defaultMaxLimiters bounds the per-key map.
const defaultMaxLimiters = 10000

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP and, when a session cookie is
// present, a second bucket per session. A request must pass both.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	max      int
	now      func() time.Time
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		max:      defaultMaxLimiters,
		now:      time.Now,
	}
}

// allow takes one token from every key's bucket. Buckets are checked in order
// and the first refusal stops the request.
func (rl *RateLimiter) allow(keys ...string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for _, key := range keys {
		e, ok := rl.limiters[key]
		if !ok {
			if len(rl.limiters) >= rl.max {
				rl.evict(now)
			}
			e = &limiterEntry{lim: rate.NewLimiter(rl.rate, rl.burst)}
			rl.limiters[key] = e
		}
		e.lastSeen = now
		if !e.lim.AllowN(now, 1) {
			return false
		}
	}
	return true
}

// evict drops buckets that have refilled completely, which loses no state.
// When every bucket is still draining, the least recently used one goes.
// Caller holds mu.
func (rl *RateLimiter) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range rl.limiters {
		if e.lim.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, k)
			continue
		}
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	if len(rl.limiters) >= rl.max && oldestKey != "" {
		delete(rl.limiters, oldestKey)
	}
}

// Handler must run after SessionCookie so sessions get their own bucket.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys := []string{"ip:" + c.ClientIP()}
		if sessionID, ok := SessionID(c); ok {
			keys = append(keys, "session:"+sessionID)
		}
		if !rl.allow(keys...) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with one
// bucket per identity and opportunistic eviction of idle buckets. Two
// instances are typically installed: a general one for the API and a
// tighter one in front of the generation routes, which cost model tokens.
//
// The limiter is process-local; it bounds abuse per replica, not globally.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc selects the identity a bucket is keyed by.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys by authenticated user, falling back to the client IP.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    KeyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	sweepN   uint64
	sweepMax uint64
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (coerced to at least 1). A nil keyFn means KeyByUserOrIP.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
		sweepMax: 5000,
	}
}

// limiter returns the bucket of key. Every sweepMax lookups idle buckets
// are dropped first, so an expired bucket is recreated full.
func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepN++
	if rl.sweepN >= rl.sweepMax {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.sweepN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Len returns the number of live buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// IsRateBypass reports whether IdempotencyValidator marked a replay.
func IsRateBypass(c *gin.Context) bool {
	return c.GetBool(ctxKeyRateBypass)
}

// Handler enforces the limit. Replays pass without spending a token;
// rejected requests get 429 with a Retry-After estimate in seconds (1 when
// the rate is zero and the bucket never refills).
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		now := time.Now()
		lim := rl.limiter(rl.keyFn(c), now)
		r := lim.ReserveN(now, 1)
		if r.OK() && r.DelayFrom(now) == 0 {
			c.Next()
			return
		}
		retry := 1
		if r.OK() {
			// a zero rate never refills: the delay is InfDuration
			if d := r.DelayFrom(now); d != rate.InfDuration {
				if s := int(d.Seconds() + 0.999); s > retry {
					retry = s
				}
			}
			r.CancelAt(now)
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		abort(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}

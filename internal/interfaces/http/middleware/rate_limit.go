// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"golang.org/x/time/rate"
)

// IPLimiter hands out one token bucket per client IP
type IPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPLimiter creates a limiter allowing rps requests per second per IP
func NewIPLimiter(rps, burst int) *IPLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Get returns the limiter for ip
func (l *IPLimiter) Get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = l.now()
	return e.limiter
}

// Prune forgets IPs not seen for idle
func (l *IPLimiter) Prune(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	for ip, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

// RateLimit rejects clients that exceed their token bucket
func RateLimit(cfg config.SecurityConfig, limiter *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.RateLimitPerSecond <= 0 {
			c.Next()
			return
		}

		lim := limiter.Get(c.ClientIP())
		reservation := lim.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			retryAfter := int(math.Ceil(delay.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		// Add rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RateLimitPerSecond))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))

		c.Next()
	}
}

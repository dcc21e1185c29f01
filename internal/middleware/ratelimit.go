package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// UserRateLimiter is a token bucket per authenticated user.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[uint]*limiterEntry
	rate      rate.Limit
	burst     int
	clock     clockwork.Clock
	cleanupAt time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows perMinute requests per user per minute with a
// burst of the same size. perMinute <= 0 disables limiting.
func NewUserRateLimiter(perMinute int, clock clockwork.Clock) *UserRateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UserRateLimiter{
		limiters:  make(map[uint]*limiterEntry),
		rate:      rate.Limit(float64(perMinute) / 60),
		burst:     perMinute,
		clock:     clock,
		cleanupAt: clock.Now().Add(5 * time.Minute),
	}
}

// Allow reports whether the user may make another request now.
func (l *UserRateLimiter) Allow(userID uint) bool {
	if l.burst <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.cleanupAt) {
		l.cleanup(now)
		l.cleanupAt = now.Add(5 * time.Minute)
	}

	entry, ok := l.limiters[userID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// cleanup drops limiters idle for ten minutes. Must be called with mu held.
func (l *UserRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-10 * time.Minute)
	for id, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
		}
	}
}

// Middleware must run after RequireAuth.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if ok && !l.Allow(id.UserID) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}

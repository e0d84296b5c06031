package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hirevision-backend/internal/shared/metrics"
	"hirevision-backend/internal/shared/server/respond"
)

// CodeRateLimited is the error code of a throttled request.
const CodeRateLimited = "RATE_LIMITED"

// idleBucketTTL is how long an untouched bucket survives before it is swept.
const idleBucketTTL = 30 * time.Minute

// Quota is a token bucket: Rate tokens per second, at most Burst at once.
type Quota struct {
	Rate  float64
	Burst int
}

func (q Quota) unlimited() bool { return q.Rate <= 0 || q.Burst <= 0 }

// RateLimitConfig selects which requests are throttled and how hard.
type RateLimitConfig struct {
	// Quota applies to every request whose method is in Methods.
	Quota Quota
	// Methods lists throttled HTTP methods. Empty throttles every method.
	Methods []string
	// Limiter is shared state; nil gets a private limiter.
	Limiter *RateLimiter
}

// RateLimiter holds one bucket per caller identity.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastUsed time.Time
}

// NewRateLimiter returns an empty limiter. now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*bucket), now: now}
}

// RateLimit throttles submissions per identity. Requests without an identity
// fall back to the client IP. A refused request gets 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	methods := make(map[string]bool, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = true
	}
	return func(c *gin.Context) {
		if len(methods) > 0 && !methods[c.Request.Method] {
			c.Next()
			return
		}
		who := strings.TrimSpace(UserIDFromContext(c))
		if who == "" {
			who = "ip:" + c.ClientIP()
		}
		wait, ok := limiter.Take(who, cfg.Quota)
		if ok {
			c.Next()
			return
		}
		if wait < time.Millisecond {
			wait = time.Second
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncThrottled(route)
		c.Header("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
		respond.Error(c, http.StatusTooManyRequests, CodeRateLimited,
			"Too many requests. Please wait before submitting again.",
			gin.H{"retryAfterMs": wait.Milliseconds()})
	}
}

// Take spends one token from key's bucket. When the bucket is empty nothing is
// spent and the time until the next token is returned.
func (l *RateLimiter) Take(key string, q Quota) (time.Duration, bool) {
	if l == nil || q.unlimited() {
		return 0, true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= idleBucketTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastUsed) > idleBucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, found := l.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(q.Rate), q.Burst)}
		l.buckets[key] = b
	}
	b.lastUsed = now

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return time.Second, false
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// Size reports how many buckets are live.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"golang.org/x/time/rate"
)

// visitorIdleTTL is how long a client IP may stay quiet before its limiter is dropped.
const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorTable keeps one limiter per client IP. Entries idle for longer than
// ttl are swept at most once per ttl, on the request path.
type visitorTable struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newVisitorTable(r rate.Limit, b int, ttl time.Duration, now func() time.Time) *visitorTable {
	return &visitorTable{
		visitors:  make(map[string]*visitor),
		limit:     r,
		burst:     b,
		ttl:       ttl,
		now:       now,
		lastSweep: now(),
	}
}

func (t *visitorTable) allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastSweep) >= t.ttl {
		for key, v := range t.visitors {
			if now.Sub(v.lastSeen) >= t.ttl {
				delete(t.visitors, key)
			}
		}
		t.lastSweep = now
	}

	v, exists := t.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (t *visitorTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.visitors)
}

// RateLimiter allows r requests per second per client IP with bursts of b.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	visitors := newVisitorTable(r, b, visitorIdleTTL, time.Now)

	return func(c *gin.Context) {
		if !visitors.allow(c.ClientIP()) {
			apierrors.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

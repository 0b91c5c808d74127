package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/DragonRU1/silentauth/internal/http/response"
)

// RateLimiter is a per-client fixed-window limiter. Good enough for abuse
// damping on auth and API routes; it is not a fairness mechanism.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

func (l *RateLimiter) allow(key string) (bool, time.Duration) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		if len(l.windows) > 10000 {
			for k, v := range l.windows {
				if now.After(v.resetAt) {
					delete(l.windows, k)
				}
			}
		}
		return true, 0
	}
	if w.count >= l.limit {
		return false, time.Until(w.resetAt)
	}
	w.count++
	return true, 0
}

func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := l.allow(clientKey(r))
			if !ok {
				w.Header().Set("Retry-After", retryAfter.Round(time.Second).String())
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	// RealIP middleware has already rewritten RemoteAddr when a trusted
	// forwarding header is present.
	return r.RemoteAddr
}

package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter applies a fixed-window request cap per client IP to mutating
// routes. State is process-wide and lives only in memory: limits reset
// when the process restarts, and replicas do not share counters.
type RateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	count int
	start time.Time
}

// NewRateLimiter builds a limiter allowing the given number of requests
// per window per client.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		clients:  make(map[string]*clientWindow),
	}
}

// Handler wraps the next handler, rejecting clients over the limit with
// 429 and a Retry-After hint.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if retryAfter, limited := l.take(key); limited {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// take records one request for the client and reports whether it exceeded
// the window cap.
func (l *RateLimiter) take(key string) (time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	window, ok := l.clients[key]
	if !ok || now.Sub(window.start) >= l.window {
		l.prune(now)
		l.clients[key] = &clientWindow{count: 1, start: now}
		return 0, false
	}

	window.count++
	if window.count > l.requests {
		return l.window - now.Sub(window.start), true
	}
	return 0, false
}

// prune drops expired windows; called opportunistically while holding the
// lock so the map does not grow unbounded.
func (l *RateLimiter) prune(now time.Time) {
	for key, window := range l.clients {
		if now.Sub(window.start) >= l.window {
			delete(l.clients, key)
		}
	}
}

func clientKey(r *http.Request) string {
	// RealIP middleware already rewrote RemoteAddr from the forwarding
	// headers when present.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package internal

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	rps     rate.Limit
	burst   int
	ttl     time.Duration
}

type clientEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimitHandler wraps next with a per-client token bucket keyed by
// client IP. rps <= 0 disables limiting. Entries idle longer than ttl are
// evicted.
func NewRateLimitHandler(next http.Handler, rps int64, burst int, ttl time.Duration) http.Handler {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = int(rps)
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	limiter := &clientLimiter{
		clients: make(map[string]*clientEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.allow(clientIP(r)) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *clientLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[key]
	if !ok {
		l.evictStale(now)
		entry = &clientEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = entry
	}
	entry.seen = now
	return entry.limiter.Allow()
}

// evictStale runs under the mutex, only when a new client shows up.
func (l *clientLimiter) evictStale(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.seen) > l.ttl {
			delete(l.clients, key)
		}
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

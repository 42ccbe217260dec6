package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const clientIdleTTL = 5 * time.Minute

// rateLimiter decides whether a request from the given client may proceed.
type rateLimiter interface {
	Allow(client string) bool
}

// clientLimiter hands every client its own token bucket.
type clientLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) *clientLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &clientLimiter{
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (l *clientLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > clientIdleTTL {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > clientIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// size reports the number of tracked clients.
func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func rateLimitMiddleware(limiter rateLimiter, trustForwardedFor bool, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow(clientKey(r, trustForwardedFor)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}

// clientKey identifies the caller by its remote host. X-Forwarded-For is
// client-controlled, so its first hop is only used when trustForwardedFor is
// set, i.e. when a proxy in front of the service overwrites the header.
func clientKey(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, false, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, false, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if !limiter.Allow("client") {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow("client") {
		t.Fatalf("expected burst of one to block the second request")
	}
}

func TestClientLimiterSeparatesClients(t *testing.T) {
	limiter := newTokenBucketLimiter(1, 1)

	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first client to be allowed")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected second client to have its own bucket")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first client to be limited")
	}
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTokenBucketLimiter(1, 1)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("b")
	if got := limiter.size(); got != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", got)
	}

	now = now.Add(2 * clientIdleTTL)
	limiter.Allow("c")
	if got := limiter.size(); got != 1 {
		t.Fatalf("expected idle clients to be evicted, got %d tracked", got)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5123"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientKey(req, false); got != "192.0.2.10" {
		t.Fatalf("expected remote host when forwarded header is untrusted, got %q", got)
	}
	if got := clientKey(req, true); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientKey(req, true); got != "192.0.2.10" {
		t.Fatalf("expected remote host without forwarded header, got %q", got)
	}
}

func TestRotatingForwardedForDoesNotResetBucket(t *testing.T) {
	limiter := newTokenBucketLimiter(1, 1)
	handler := rateLimitMiddleware(limiter, false, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:5123"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected one request through and the rest limited, got %v", codes)
	}
	if limiter.size() != 1 {
		t.Fatalf("expected a single tracked client, got %d", limiter.size())
	}
}

func TestTrustedForwardedForSeparatesClients(t *testing.T) {
	limiter := newTokenBucketLimiter(1, 1)
	handler := rateLimitMiddleware(limiter, true, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, fwd := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to have its own bucket, got %d", fwd, rec.Code)
		}
	}
}

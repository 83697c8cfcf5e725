package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	current := time.Date(2024, 6, 19, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return current }

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do(); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, rec.Code)
		}
	}

	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	// A fresh window clears the counter.
	current = current.Add(time.Minute)
	if rec := do(); rec.Code != http.StatusNoContent {
		t.Fatalf("after window reset: expected 204, got %d", rec.Code)
	}
}

func TestRateLimiterKeysByClient(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("203.0.113.7:1000"); code != http.StatusNoContent {
		t.Fatalf("first client: expected 204, got %d", code)
	}
	if code := do("203.0.113.8:1000"); code != http.StatusNoContent {
		t.Fatalf("second client should have its own window, got %d", code)
	}
	if code := do("203.0.113.7:2000"); code != http.StatusTooManyRequests {
		t.Fatalf("same client new port: expected 429, got %d", code)
	}
}

package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: map[string]int64{}}
}

func (f *fakeCounterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func loginAttempt(handler http.Handler, email string) *httptest.ResponseRecorder {
	body := []byte(`{"email":"` + email + `","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimitBlocksEmailAfterLimit(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 100, 3)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if rec := loginAttempt(handler, "ada@example.com"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i, rec.Code)
		}
	}
	if rec := loginAttempt(handler, "ada@example.com"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past the email limit, got %d", rec.Code)
	}
	// A different shopper from the same IP is still allowed.
	if rec := loginAttempt(handler, "zara@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("expected other email to pass, got %d", rec.Code)
	}
}

func TestAuthRateLimitBlocksIPAfterLimit(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		if rec := loginAttempt(handler, "ada@example.com"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i, rec.Code)
		}
	}
	if rec := loginAttempt(handler, "zara@example.com"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past the ip limit, got %d", rec.Code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	called := false
	handler := AuthRateLimit(policy, newFakeCounterStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	if rec := loginAttempt(handler, "ada@example.com"); rec.Code != http.StatusOK || !called {
		t.Fatalf("expected pass-through, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthRateLimitPreservesBodyForHandler(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 5)
	var seen []byte
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		seen = buf.Bytes()
	}))

	loginAttempt(handler, "ada@example.com")
	if !bytes.Contains(seen, []byte("ada@example.com")) {
		t.Fatalf("handler must see the original body, got %s", seen)
	}
}

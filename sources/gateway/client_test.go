package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/network"
	"clubify/sources/tracing"
)

func testGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()

	config := &configuration.Config{}
	config.Backend.BaseURL = baseURL
	config.Backend.Token = "test-token"
	config.Backend.MaxRetries = 2
	config.Backend.RetryDelay = time.Millisecond

	return NewGateway(
		&network.BackendHTTPClient{Client: &http.Client{Timeout: 5 * time.Second}},
		config,
		tracing.NewConsoleLogger(),
		nil,
		nil,
	)
}

func TestRetriesRateLimitedThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tg_id": 42, "username": "neo", "language": "en"}`))
	}))
	defer server.Close()

	user, err := testGateway(t, server.URL).GetUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if user.TelegramID != 42 || user.Username != "neo" {
		t.Errorf("unexpected user decoded: %+v", user)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestRetriesExhaustedReturnsRateLimited(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testGateway(t, server.URL).GetUser(context.Background(), 42)
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected initial request plus 2 retries, got %d requests", got)
	}
}

func TestBadRequestIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error": "bad plan code"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testGateway(t, server.URL).GetUser(context.Background(), 42)
	if !IsBadRequest(err) {
		t.Fatalf("expected bad request error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
}

func TestNotFoundMapsToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testGateway(t, server.URL).GetSubscription(context.Background(), 1, 99)
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRetryAfterHeaderIsHonored(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"tg_id": 1}`))
	}))
	defer server.Close()

	start := time.Now()
	if _, err := testGateway(t, server.URL).GetUser(context.Background(), 1); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	// Retry-After: 0 means retry immediately, well under the 500ms
	// default the fallback path would have used.
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("retry did not honor Retry-After header, took %v", elapsed)
	}
}

func TestAuthAndIdempotencyHeaders(t *testing.T) {
	var gotAuth, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-Idempotency-Key")
		w.Write([]byte(`{"payment_id": "p-1", "status": "created"}`))
	}))
	defer server.Close()

	payment, err := testGateway(t, server.URL).CreatePayment(context.Background(), CreatePaymentRequest{
		TelegramID:     42,
		SubscriptionID: 7,
		Provider:       "card",
		PlanCode:       "m1",
	}, "key-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotKey != "key-123" {
		t.Errorf("unexpected idempotency key %q", gotKey)
	}
	if payment.EffectiveID() != "p-1" {
		t.Errorf("unexpected payment id %q", payment.EffectiveID())
	}
}

func TestEffectiveFieldsPreferFreshShape(t *testing.T) {
	fresh := Payment{PaymentID: "a", PayLink: "https://pay/a", QR: "https://qr/a"}
	listed := Payment{ID: "b", Link: "https://pay/b", QRURL: "https://qr/b"}

	if fresh.EffectiveID() != "a" || fresh.EffectiveLink() != "https://pay/a" || fresh.EffectiveQR() != "https://qr/a" {
		t.Errorf("fresh shape not preferred: %+v", fresh)
	}
	if listed.EffectiveID() != "b" || listed.EffectiveLink() != "https://pay/b" || listed.EffectiveQR() != "https://qr/b" {
		t.Errorf("list shape not read: %+v", listed)
	}
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"titandash/pkg/flags"
)

func testPolicy() flags.Policy {
	p := flags.Default()
	p.Timeout = 2 * time.Second
	return p
}

func newTestClient(baseURL string, p flags.Policy) *Client {
	return NewClient(baseURL, p, WithSleep(func(time.Duration) {}))
}

func TestRequestRetriesTransientErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := testPolicy()
	p.RetryEnabled = true
	p.MaxRetries = 2

	_, err := newTestClient(srv.URL, p).Request(context.Background(), "/data", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if herr.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", herr.Status)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such resource"}`))
	}))
	defer srv.Close()

	p := testPolicy()
	p.RetryEnabled = true
	p.MaxRetries = 2

	_, err := newTestClient(srv.URL, p).Request(context.Background(), "/missing", nil)
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if herr.Status != http.StatusNotFound {
		t.Fatalf("unexpected status %d", herr.Status)
	}
	if herr.Message != "no such resource" {
		t.Fatalf("expected message from error body, got %q", herr.Message)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestRequestRecoversAfterRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := testPolicy()
	p.RetryEnabled = true
	p.MaxRetries = 1

	raw, err := newTestClient(srv.URL, p).Request(context.Background(), "/data", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]bool
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRequestRetryDisabled(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := testPolicy()
	p.RetryEnabled = false
	p.MaxRetries = 3

	_, err := newTestClient(srv.URL, p).Request(context.Background(), "/data", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p := testPolicy()
	p.RetryEnabled = false

	_, err := newTestClient(srv.URL, p).Request(context.Background(), "/slow", &RequestOptions{
		Timeout: 50 * time.Millisecond,
	})
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if herr.Status != StatusTimeout {
		t.Fatalf("unexpected status %d", herr.Status)
	}
	if !herr.IsTimeout() {
		t.Fatalf("expected timeout error")
	}
	if v, ok := herr.Data["timeout"].(bool); !ok || !v {
		t.Fatalf("expected timeout marker in data, got %v", herr.Data)
	}
}

func TestRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL, testPolicy()).Request(context.Background(), "/data", nil)
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if herr.Status != StatusNetwork {
		t.Fatalf("unexpected status %d", herr.Status)
	}
}

func TestRequestQueryAndAuth(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(),
		WithTokenProvider(func() string { return "tok123" }),
		WithSleep(func(time.Duration) {}),
	)
	_, err := c.Request(context.Background(), "/data", &RequestOptions{
		Params: map[string]string{"symbols": "BTCUSDT", "empty": ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "symbols=BTCUSDT" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestShouldRetry(t *testing.T) {
	p := flags.Default()
	p.RetryEnabled = true
	p.MaxRetries = 2

	cases := []struct {
		name    string
		retries int
		status  int
		want    bool
	}{
		{"bad gateway first", 0, http.StatusBadGateway, true},
		{"unavailable under budget", 1, http.StatusServiceUnavailable, true},
		{"budget exhausted", 2, http.StatusBadGateway, false},
		{"timeout not retried", 0, StatusTimeout, false},
		{"server error not retried", 0, http.StatusInternalServerError, false},
		{"client error not retried", 0, http.StatusNotFound, false},
		{"network not retried", 0, StatusNetwork, false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.retries, tc.status, p); got != tc.want {
			t.Errorf("%s: ShouldRetry(%d, %d) = %v, want %v", tc.name, tc.retries, tc.status, got, tc.want)
		}
	}

	p.RetryEnabled = false
	if ShouldRetry(0, http.StatusBadGateway, p) {
		t.Errorf("retry disabled but ShouldRetry returned true")
	}
}

func TestBackoffIsLinear(t *testing.T) {
	if Backoff(0) != time.Second {
		t.Fatalf("unexpected first backoff %v", Backoff(0))
	}
	if Backoff(1) != 2*time.Second {
		t.Fatalf("unexpected second backoff %v", Backoff(1))
	}
}

package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected json accept header, got %q", got)
		}
		w.Write([]byte(`{"price":"117533.48"}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(noopLogger())
	result := fetcher.Fetch(context.Background(), Source{Name: "Coinbase", URL: server.URL, Weight: 1.5}, time.Second)
	if result.Err != nil {
		t.Fatalf("fetch failed: %v", result.Err)
	}
	if result.Price != 117533.48 {
		t.Fatalf("wrong price: %v", result.Price)
	}
	if result.Weight != 1.5 {
		t.Fatalf("weight not carried through: %v", result.Weight)
	}
	if result.Latency <= 0 {
		t.Fatal("latency not recorded")
	}
}

func TestHTTPFetcherBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(noopLogger())
	result := fetcher.Fetch(context.Background(), Source{Name: "Coinbase", URL: server.URL}, time.Second)
	if result.Err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(result.Err.Error(), "status 429") {
		t.Fatalf("error should carry the status code: %v", result.Err)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"price":"1"}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(noopLogger())
	result := fetcher.Fetch(context.Background(), Source{Name: "Coinbase", URL: server.URL, Timeout: 20 * time.Millisecond}, time.Second)
	if result.Err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPFetcherBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(noopLogger())
	src := Source{Name: "Coinbase", URL: server.URL}
	for i := 0; i < 5; i++ {
		if result := fetcher.Fetch(context.Background(), src, time.Second); result.Err == nil {
			t.Fatalf("attempt %d should have failed", i)
		}
	}

	result := fetcher.Fetch(context.Background(), src, time.Second)
	if result.Err == nil {
		t.Fatal("breaker should reject the sixth attempt")
	}
	if !strings.Contains(result.Err.Error(), "circuit breaker is open") {
		t.Fatalf("expected open-breaker rejection, got: %v", result.Err)
	}
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/infra/ratelimit"
)

func namedTestClient(name, url string) *Client {
	return NewClient(Config{Name: name, BaseURL: url, APIKey: "test-key", Timeout: 2 * time.Second},
		testLimiter(), noRetry(), nil)
}

func TestFailover_PrimarySuccessSkipsFallback(t *testing.T) {
	var fallbackCalls atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dailyBody))
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalls.Add(1)
		w.Write([]byte(dailyBody))
	}))
	defer fallback.Close()

	f := NewFailover([]*Client{
		namedTestClient("one", primary.URL),
		namedTestClient("two", fallback.URL),
	}, nil)

	ds, err := f.Fetch(context.Background(), domain.Request{Symbol: "TEST", Endpoint: domain.EndpointDaily})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ds.Candles) != 3 {
		t.Errorf("rows = %d, want 3", len(ds.Candles))
	}
	if n := fallbackCalls.Load(); n != 0 {
		t.Errorf("fallback called %d times, want 0", n)
	}
}

func TestFailover_TransientFailureMovesToNext(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dailyBody))
	}))
	defer fallback.Close()

	f := NewFailover([]*Client{
		namedTestClient("one", primary.URL),
		namedTestClient("two", fallback.URL),
	}, nil)

	ds, err := f.Fetch(context.Background(), domain.Request{Symbol: "TEST", Endpoint: domain.EndpointDaily})
	if err != nil {
		t.Fatalf("Fetch should succeed via fallback: %v", err)
	}
	if len(ds.Candles) != 3 {
		t.Errorf("rows = %d, want 3", len(ds.Candles))
	}
}

func TestFailover_QuotaExhaustionMovesToNext(t *testing.T) {
	// Primary's own daily window is spent; the fallback has its own budget.
	spent := ratelimit.New([]ratelimit.WindowConfig{
		{Name: "day", Limit: 1, Interval: 24 * time.Hour},
	})
	spent.TryAcquire(1)

	var primaryCalls atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		w.Write([]byte(dailyBody))
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dailyBody))
	}))
	defer fallback.Close()

	f := NewFailover([]*Client{
		NewClient(Config{Name: "one", BaseURL: primary.URL, APIKey: "k", Timeout: time.Second}, spent, noRetry(), nil),
		namedTestClient("two", fallback.URL),
	}, nil)

	ds, err := f.Fetch(context.Background(), domain.Request{Symbol: "TEST", Endpoint: domain.EndpointDaily})
	if err != nil {
		t.Fatalf("Fetch should succeed via fallback: %v", err)
	}
	if len(ds.Candles) != 3 {
		t.Errorf("rows = %d, want 3", len(ds.Candles))
	}
	if n := primaryCalls.Load(); n != 0 {
		t.Errorf("primary reached the wire %d times with no quota, want 0", n)
	}
}

func TestFailover_FatalStopsTheChain(t *testing.T) {
	var fallbackCalls atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call."}`)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalls.Add(1)
		w.Write([]byte(dailyBody))
	}))
	defer fallback.Close()

	f := NewFailover([]*Client{
		namedTestClient("one", primary.URL),
		namedTestClient("two", fallback.URL),
	}, nil)

	_, err := f.Fetch(context.Background(), domain.Request{Symbol: "BAD", Endpoint: domain.EndpointDaily})
	if err == nil {
		t.Fatal("fatal vendor error should not be recovered by failover")
	}
	if n := fallbackCalls.Load(); n != 0 {
		t.Errorf("fallback called %d times after fatal error, want 0", n)
	}
}

func TestFailover_AllProvidersFailing(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	f := NewFailover([]*Client{
		namedTestClient("one", broken.URL),
		namedTestClient("two", broken.URL),
	}, nil)

	_, err := f.Fetch(context.Background(), domain.Request{Symbol: "TEST", Endpoint: domain.EndpointDaily})
	if err == nil {
		t.Fatal("expected an error when every provider fails")
	}
}

package barsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/backforge/backforge/pkg/models"
)

func TestFetchBarsDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"symbol":"AAPL","ts":"2023-01-02T09:30:00Z","open":"100.00","high":"101.00","low":"99.50","close":"100.50","volume":1000},
			{"symbol":"AAPL","ts":"2023-01-03T09:30:00Z","open":"100.50","high":"102.00","low":"100.00","close":"101.75","volume":1200}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	bars, err := c.FetchBars(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Symbol != "AAPL" {
		t.Errorf("got symbol %q, want AAPL", bars[0].Symbol)
	}
	if bars[0].Close.String() != "100.500000" {
		t.Errorf("got close %v, want 100.500000", bars[0].Close)
	}
}

func TestFetchBarsReturnsErrorOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchBars(context.Background(), "AAPL", time.Now(), time.Now())
	if err == nil {
		t.Errorf("expected an error on a 500 response")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)

	if _, found, err := cache.Load("AAPL", from, to); err != nil || found {
		t.Fatalf("expected a cache miss, found=%v err=%v", found, err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"AAPL","ts":"2023-01-02T09:30:00Z","open":"1.00","high":"1.00","low":"1.00","close":"1.00","volume":1}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	feed := NewFeed(client, cache)

	first, err := feed.Load(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("Load (miss): %v", err)
	}
	srv.Close() // the second load must come from cache, not the network

	second, err := feed.Load(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("Load (hit): %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("cached load returned %d bars, want %d", len(second), len(first))
	}
}

func TestMergeChronologicalSortsAcrossSymbols(t *testing.T) {
	aapl := []models.Bar{
		{Symbol: "AAPL", UnixTsNs: 3},
		{Symbol: "AAPL", UnixTsNs: 1},
	}
	msft := []models.Bar{
		{Symbol: "MSFT", UnixTsNs: 2},
	}

	merged := MergeChronological(aapl, msft)
	if len(merged) != 3 {
		t.Fatalf("got %d bars, want 3", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].UnixTsNs < merged[i-1].UnixTsNs {
			t.Fatalf("merged bars not chronologically ordered at index %d", i)
		}
	}
}

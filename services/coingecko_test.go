package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newCoinGeckoTestServer(t *testing.T, apiKey string, handler http.HandlerFunc) *CoinGeckoService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCoinGeckoService(apiKey, server.URL)
}

func TestCoinGeckoID(t *testing.T) {
	tests := map[string]string{
		"BTC":   "bitcoin",
		"eth":   "ethereum",
		"AVAX":  "avalanche-2",
		"MATIC": "matic-network",
		"PEPE":  "pepe",
	}
	for symbol, want := range tests {
		if got := CoinGeckoID(symbol); got != want {
			t.Errorf("CoinGeckoID(%q) = %q, want %q", symbol, got, want)
		}
	}
}

func TestCoinGeckoService_GetQuote(t *testing.T) {
	var gotKey string
	svc := newCoinGeckoTestServer(t, "demo-key", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-cg-demo-api-key")
		if r.URL.Path != "/coins/bitcoin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": "bitcoin", "symbol": "btc", "name": "Bitcoin",
			"market_data": {
				"current_price": {"usd": 42000, "eur": 39000},
				"price_change_24h": 2000,
				"price_change_percentage_24h": 5.0,
				"last_updated": "2024-03-01T12:00:00Z"
			}
		}`))
	})

	q, err := svc.GetQuote(context.Background(), "btc")
	if err != nil {
		t.Fatalf("GetQuote() error: %v", err)
	}
	if gotKey != "demo-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if q.Symbol != "BTC" || q.Name != "Bitcoin" {
		t.Errorf("unexpected symbol/name %q %q", q.Symbol, q.Name)
	}
	if q.Price != 42000 || q.PreviousClose != 40000 || q.DailyChange != 2000 || q.DailyChangePercent != 5 {
		t.Errorf("unexpected prices %+v", q)
	}
	if !q.Timestamp.Equal(testTime) {
		t.Errorf("Timestamp = %v, want %v", q.Timestamp, testTime)
	}
}

func TestCoinGeckoService_GetQuote_NotFound(t *testing.T) {
	svc := newCoinGeckoTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-cg-demo-api-key") != "" {
			t.Error("no api key header expected without a key")
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"coin not found"}`))
	})

	_, err := svc.GetQuote(context.Background(), "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCoinGeckoService_GetHistory_DailyBuckets(t *testing.T) {
	day := func(d, h int) int64 {
		return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC).UnixMilli()
	}
	svc := newCoinGeckoTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("days") != "30" || r.URL.Query().Get("vs_currency") != "usd" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprintf(w, `{"prices":[[%d,100],[%d,110],[%d,120],[%d,0],[%d,130]]}`,
			day(1, 0), day(1, 23), day(2, 12), day(3, 1), day(3, 5))
	})

	points, err := svc.GetHistory(context.Background(), "ETH", 30)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	want := []float64{110, 120, 130}
	if len(points) != len(want) {
		t.Fatalf("expected %d daily points, got %d", len(want), len(points))
	}
	for i, w := range want {
		if points[i].Close != w {
			t.Errorf("points[%d].Close = %v, want %v", i, points[i].Close, w)
		}
	}
}

func TestCoinGeckoService_GetHistory_Empty(t *testing.T) {
	svc := newCoinGeckoTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices":[]}`))
	})

	if _, err := svc.GetHistory(context.Background(), "ETH", 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCoinGeckoService_Search(t *testing.T) {
	svc := newCoinGeckoTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("query") != "sol" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`{"coins":[
			{"id":"solana","name":"Solana","symbol":"SOL"},
			{"id":"a","name":"A","symbol":"a"},
			{"id":"b","name":"B","symbol":"b"},
			{"id":"c","name":"C","symbol":"c"},
			{"id":"d","name":"D","symbol":"d"},
			{"id":"e","name":"E","symbol":"e"}
		]}`))
	})

	results, err := svc.Search(context.Background(), "sol")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected results capped at 5, got %d", len(results))
	}
	if results[0].Symbol != "SOL" || results[0].AssetType != "crypto" {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Symbol != "A" {
		t.Errorf("expected upper-cased symbol, got %q", results[1].Symbol)
	}
}

package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/folio/internal/quote"
)

func TestCoinGecko_ImplementsSpotSource(t *testing.T) {
	var _ quote.SpotSource = (*CoinGecko)(nil)
}

func TestCoinGecko_Name(t *testing.T) {
	c := New("", 0)
	if c.Name() != "coingecko" {
		t.Errorf("expected 'coingecko', got '%s'", c.Name())
	}
}

func TestCoinID(t *testing.T) {
	tests := []struct {
		ticker   string
		expected string
	}{
		{"BTC", "bitcoin"},
		{"btc", "bitcoin"},
		{"BTC-USD", "bitcoin"},
		{"ETHUSDT", "ethereum"},
		{"bitcoin", "bitcoin"},
		{"Render-Token", "render-token"},
		{"AVAX", "avalanche-2"},
	}

	for _, tc := range tests {
		if got := coinID(tc.ticker); got != tc.expected {
			t.Errorf("coinID(%s) = %s, want %s", tc.ticker, got, tc.expected)
		}
	}
}

func TestCoinGecko_FetchSpot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("ids") != "bitcoin" {
			t.Errorf("expected ids=bitcoin, got %s", r.URL.Query().Get("ids"))
		}
		if r.URL.Query().Get("vs_currencies") != "usd" {
			t.Errorf("expected vs_currencies=usd, got %s", r.URL.Query().Get("vs_currencies"))
		}
		if r.Header.Get("x-cg-demo-api-key") != "key" {
			t.Errorf("expected api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":43250.5}}`))
	}))
	defer server.Close()

	c := NewWithBaseURL("key", server.URL)
	price, err := c.FetchSpot(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 43250.5 {
		t.Errorf("expected price 43250.5, got %f", price)
	}
}

func TestCoinGecko_FetchSpot_Unknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewWithBaseURL("", server.URL)
	if _, err := c.FetchSpot(context.Background(), "nosuchcoin"); err == nil {
		t.Error("expected error for unknown coin")
	}
}

func TestCoinGecko_FetchSpot_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewWithBaseURL("", server.URL)
	if _, err := c.FetchSpot(context.Background(), "BTC"); err == nil {
		t.Error("expected error for 429")
	}
}

package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/quote"
)

func TestYahoo_ImplementsHistorySource(t *testing.T) {
	var _ quote.HistorySource = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New(0)
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{" aapl ", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"reliance.ns", "RELIANCE.NS"},
	}

	y := New(0)
	for _, tc := range tests {
		got := y.toYahooSymbol(tc.input)
		if got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "RELIANCE.NS", "BRK-B", "BTC-USD", "^NSEI", "^TNX", "INR=X", "GC=F"}
	for _, s := range valid {
		if err := validateSymbol(s); err != nil {
			t.Errorf("validateSymbol(%q) unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "AAPL/../x", "A B", "^^NSEI", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}
	for _, s := range invalid {
		if err := validateSymbol(s); err == nil {
			t.Errorf("validateSymbol(%q) expected error", s)
		}
	}
}

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "currency": "USD"},
      "timestamp": [1700000000, 1700086400, 1700172800],
      "indicators": {"quote": [{
        "high":  [110.0, null, 130.0],
        "low":   [90.0, null, 95.0],
        "close": [100.0, null, 120.0]
      }]}
    }],
    "error": null
  }
}`

func TestYahoo_FetchHistory(t *testing.T) {
	var gotPath, gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartJSON))
	}))
	defer server.Close()

	y := NewWithBaseURL(server.URL)
	bars, err := y.FetchHistory(context.Background(), "AAPL", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/AAPL" {
		t.Errorf("expected path /AAPL, got %s", gotPath)
	}
	if gotRange != "1y" {
		t.Errorf("expected range 1y, got %s", gotRange)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[1].Close.IsKnown() {
		t.Error("expected null close to be unavailable")
	}

	q := quote.FromHistory(bars)
	if q.CurrentPrice != core.Known(120) {
		t.Errorf("expected current price 120, got %v", q.CurrentPrice)
	}
	if q.High52w != core.Known(130) || q.Low52w != core.Known(90) {
		t.Errorf("unexpected range: %v..%v", q.Low52w, q.High52w)
	}
}

func TestYahoo_FetchHistory_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/BAD":
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		case "/EMPTY":
			w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	y := NewWithBaseURL(server.URL)
	ctx := context.Background()

	for _, symbol := range []string{"BAD", "EMPTY", "LIMITED"} {
		if _, err := y.FetchHistory(ctx, symbol, "5d"); err == nil {
			t.Errorf("FetchHistory(%s) expected error", symbol)
		}
	}

	if _, err := y.FetchHistory(ctx, "AAPL", "7w"); err == nil {
		t.Error("expected error for unsupported window")
	}
	if _, err := y.FetchHistory(ctx, "", "5d"); err == nil {
		t.Error("expected error for empty symbol")
	}
}

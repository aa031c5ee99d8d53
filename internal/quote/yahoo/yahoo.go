// Package yahoo fetches daily price history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/quote"
)

const (
	baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// validSymbol matches symbols like AAPL, RELIANCE.NS, 0700.HK, BRK-B,
// BTC-USD, ^NSEI, INR=X and GC=F.
var validSymbol = regexp.MustCompile(`^\^?[A-Za-z0-9][A-Za-z0-9.\-]{0,19}(=[A-Za-z]{1,2})?$`)

// validRanges are the range values the chart endpoint accepts.
var validRanges = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 24 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo implements quote.HistorySource
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo client
func New(timeout time.Duration) *Yahoo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Yahoo{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Yahoo client with custom base URL (for testing)
func NewWithBaseURL(u string) *Yahoo {
	y := New(0)
	y.baseURL = u
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// toYahooSymbol converts ledger symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

// FetchHistory fetches a daily series over the trailing window
func (y *Yahoo) FetchHistory(ctx context.Context, symbol, window string) ([]quote.Bar, error) {
	yahooSymbol := y.toYahooSymbol(symbol)
	if err := validateSymbol(yahooSymbol); err != nil {
		return nil, err
	}
	if !validRanges[window] {
		return nil, fmt.Errorf("unsupported window: %q", window)
	}

	u := fmt.Sprintf("%s/%s?interval=1d&range=%s", y.baseURL, url.PathEscape(yahooSymbol), window)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// The chart endpoint rejects requests without a browser-like agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; folio/1.0)")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data for symbol: %s", symbol)
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return []quote.Bar{}, nil
	}
	series := r.Indicators.Quote[0]

	data := make([]quote.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		data = append(data, quote.Bar{
			Time:  time.Unix(ts, 0),
			High:  at(series.High, i),
			Low:   at(series.Low, i),
			Close: at(series.Close, i),
		})
	}

	return data, nil
}

// at returns the i-th value of a nullable series.
func at(series []*float64, i int) core.Float {
	if i >= len(series) || series[i] == nil {
		return core.NA
	}
	return core.Known(*series[i])
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	High  []*float64 `json:"high"`
	Low   []*float64 `json:"low"`
	Close []*float64 `json:"close"`
}

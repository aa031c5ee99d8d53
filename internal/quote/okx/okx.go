// Package okx fetches crypto spot prices from the OKX market ticker API.
package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	baseURL      = "https://www.okx.com"
	defaultQuote = "USDT"
)

var quoteCurrencies = []string{"USDT", "USDC", "BTC", "ETH"}

// OKX implements quote.SpotSource
type OKX struct {
	client  *http.Client
	baseURL string
}

// New creates a new OKX client
func New(timeout time.Duration) *OKX {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OKX{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates an OKX client with custom base URL (for testing)
func NewWithBaseURL(u string) *OKX {
	o := New(0)
	o.baseURL = u
	return o
}

func (o *OKX) Name() string {
	return "okx"
}

// InstID converts a ledger ticker to an OKX instrument id.
// "BTC", "BTC-USD", "btc/usdt" and "BTCUSDT" all become "BTC-USDT".
func InstID(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("/", "-", "_", "-").Replace(s)

	base, quote, ok := strings.Cut(s, "-")
	if !ok {
		base, quote = s, ""
		for _, q := range quoteCurrencies {
			if strings.HasSuffix(s, q) && len(s) > len(q) {
				base, quote = strings.TrimSuffix(s, q), q
				break
			}
		}
	}
	switch quote {
	case "", "USD":
		quote = defaultQuote
	}
	return base + "-" + quote
}

// FetchSpot fetches the last traded price of an instrument
func (o *OKX) FetchSpot(ctx context.Context, ticker string) (float64, error) {
	instID := InstID(ticker)
	if instID == "" {
		return 0, fmt.Errorf("empty ticker")
	}
	u := fmt.Sprintf("%s/api/v5/market/ticker?instId=%s", o.baseURL, url.QueryEscape(instID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	if result.Code != "0" || len(result.Data) == 0 {
		return 0, fmt.Errorf("okx error: %s", result.Msg)
	}

	price, err := strconv.ParseFloat(result.Data[0].Last, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", result.Data[0].Last, err)
	}
	return price, nil
}

// OKX API response types
type tickerResponse struct {
	Code string       `json:"code"`
	Msg  string       `json:"msg"`
	Data []tickerData `json:"data"`
}

type tickerData struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
}

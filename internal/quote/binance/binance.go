// Package binance fetches crypto spot prices from the Binance ticker API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	baseURL      = "https://api.binance.com"
	defaultQuote = "USDT"
)

// Common quote currencies in order of priority for detection
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB"}

var validPair = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// Binance implements quote.SpotSource
type Binance struct {
	client  *http.Client
	baseURL string
}

// New creates a new Binance client
func New(timeout time.Duration) *Binance {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Binance{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Binance client with custom base URL (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New(0)
	b.baseURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// NormalizeSymbol converts various input formats to a trading pair
// Input formats: "BTC", "btc", "BTC-USD", "BTC/USDT", "btcusdt"
// Output: "BTCUSDT"
func NormalizeSymbol(input string) string {
	if input == "" {
		return ""
	}

	// Uppercase and remove common separators
	s := strings.ToUpper(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")

	// USD-quoted tickers trade against USDT on Binance
	if strings.HasSuffix(s, "USD") && len(s) > 3 {
		return s + "T"
	}

	// Ensure there's a base currency left (symbol must be longer than quote)
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}

	return s + defaultQuote
}

// FetchSpot fetches the last traded price of a pair
func (b *Binance) FetchSpot(ctx context.Context, ticker string) (float64, error) {
	symbol := NormalizeSymbol(ticker)
	if !validPair.MatchString(symbol) {
		return 0, fmt.Errorf("invalid symbol format: %s", ticker)
	}

	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result tickerPrice
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", result.Price, err)
	}
	return price, nil
}

// Binance API response types
type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

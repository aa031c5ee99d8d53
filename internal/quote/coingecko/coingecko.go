// Package coingecko fetches crypto spot prices from the CoinGecko API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	baseURL    = "https://api.coingecko.com/api/v3"
	vsCurrency = "usd"
)

// Symbol to CoinGecko ID mapping
var symbolToIDMap = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"LTC":   "litecoin",
	"ETC":   "ethereum-classic",
	"XLM":   "stellar",
	"ALGO":  "algorand",
	"NEAR":  "near",
	"AAVE":  "aave",
	"ARB":   "arbitrum",
	"OP":    "optimism",
}

// quoteSuffixes are stripped from pair-style tickers (BTC-USD, ETHUSDT).
var quoteSuffixes = []string{"-USDT", "-USD", "/USDT", "/USD", "USDT", "USD"}

// CoinGecko implements quote.SpotSource
type CoinGecko struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinGecko client
func New(apiKey string, timeout time.Duration) *CoinGecko {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGecko{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinGecko client with custom base URL (for testing)
func NewWithBaseURL(apiKey, u string) *CoinGecko {
	c := New(apiKey, 0)
	c.baseURL = u
	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

// coinID converts a ledger ticker to a CoinGecko coin id. Ledgers hold
// either ids ("bitcoin") or symbols ("BTC", "BTC-USD").
func coinID(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	for _, suffix := range quoteSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	if id, ok := symbolToIDMap[s]; ok {
		return id
	}
	return strings.ToLower(strings.TrimSpace(ticker))
}

// FetchSpot fetches the USD spot price of a coin
func (c *CoinGecko) FetchSpot(ctx context.Context, ticker string) (float64, error) {
	id := coinID(ticker)
	if id == "" {
		return 0, fmt.Errorf("coin id cannot be empty")
	}

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(id), vsCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	price, ok := result[id][vsCurrency]
	if !ok {
		return 0, fmt.Errorf("no data for coin: %s", id)
	}
	return price, nil
}

// Package finnhub fetches company news from the Finnhub API.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/news"
)

const baseURL = "https://finnhub.io/api/v1"

// Finnhub implements news.Provider
type Finnhub struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type article struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// New creates a new Finnhub client
func New(apiKey string, timeout time.Duration) *Finnhub {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Finnhub{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a client with custom base URL (for testing)
func NewWithBaseURL(apiKey, u string) *Finnhub {
	f := New(apiKey, 0)
	f.baseURL = u
	return f
}

func (f *Finnhub) Name() string {
	return "finnhub"
}

// FetchNews returns company news for ticker published between from and to.
func (f *Finnhub) FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]news.Article, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}
	if f.apiKey == "" {
		return nil, fmt.Errorf("finnhub api key not configured")
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", from.Format(time.DateOnly))
	q.Set("to", to.Format(time.DateOnly))
	q.Set("token", f.apiKey)
	u := f.baseURL + "/company-news?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var raw []article
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]news.Article, 0, len(raw))
	for _, a := range raw {
		art := news.Article{
			Headline: a.Headline,
			Source:   a.Source,
			URL:      a.URL,
			Summary:  a.Summary,
		}
		if a.Datetime > 0 {
			art.PublishedAt = time.Unix(a.Datetime, 0).UTC()
		}
		out = append(out, art)
	}
	return out, nil
}

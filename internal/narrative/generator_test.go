package narrative

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLLM answers by ticker. Tickers listed in fail always error.
type mockLLM struct {
	mu       sync.Mutex
	response string
	fail     map[string]bool
	calls    []string
}

func (m *mockLLM) Name() string { return "mock" }

func (m *mockLLM) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticker := tickerOf(req.Messages[0].Content)
	m.calls = append(m.calls, ticker)
	if m.fail[ticker] {
		return nil, errors.New("rate limited")
	}
	resp := m.response
	if resp == "" {
		resp = `{"commentary":"Fine.","action":"HOLD","signals_to_monitor":["earnings"]}`
	}
	return &llm.ChatResponse{Content: resp}, nil
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// tickerOf reads the ticker from the "## Position: name (TICKER)" line.
func tickerOf(prompt string) string {
	start := -1
	for i, c := range prompt {
		if c == '(' && start < 0 {
			start = i + 1
		}
		if c == ')' && start >= 0 {
			return prompt[start:i]
		}
	}
	return ""
}

func noWait(ctx context.Context, d time.Duration) error { return ctx.Err() }

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialBackoff: time.Millisecond, Sleep: noWait}
}

func TestGenerator_Generate(t *testing.T) {
	m := &mockLLM{}
	g := NewGenerator(m, WithRetry(fastRetry(3)))

	r, err := g.Generate(context.Background(), Input{AssetName: "Apple", Ticker: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, core.ActionHold, r.Action)
	assert.Equal(t, "Fine.", r.Commentary)
	assert.Equal(t, []string{"earnings"}, r.Signals)
}

func TestGenerator_CachesByInput(t *testing.T) {
	m := &mockLLM{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGenerator(m, WithRetry(fastRetry(1)), WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	in := Input{AssetName: "Apple", Ticker: "AAPL", CurrentPrice: core.Known(180)}
	_, err := g.Generate(context.Background(), in)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, m.callCount())

	changed := in
	changed.CurrentPrice = core.Known(181)
	_, err = g.Generate(context.Background(), changed)
	require.NoError(t, err)
	assert.Equal(t, 2, m.callCount())

	now = now.Add(2 * time.Minute)
	_, err = g.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3, m.callCount())
}

func TestGenerator_RetriesThenFails(t *testing.T) {
	m := &mockLLM{fail: map[string]bool{"AAPL": true}}
	g := NewGenerator(m, WithRetry(fastRetry(3)))

	_, err := g.Generate(context.Background(), Input{Ticker: "AAPL"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNarrativeFailed))
	assert.Equal(t, 3, m.callCount())
}

func TestGenerator_MalformedResponse(t *testing.T) {
	m := &mockLLM{response: "no idea"}
	g := NewGenerator(m, WithRetry(fastRetry(2)))

	_, err := g.Generate(context.Background(), Input{Ticker: "AAPL"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNarrativeFailed))
	assert.Equal(t, 2, m.callCount())
}

func TestGenerator_NoProvider(t *testing.T) {
	g := NewGenerator(nil)

	_, err := g.Generate(context.Background(), Input{Ticker: "AAPL"})
	assert.True(t, errors.Is(err, core.ErrNarrativeFailed))
}

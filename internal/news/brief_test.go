package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/folio/internal/llm"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/stretchr/testify/assert"
)

type mockLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (m *mockLLM) Name() string { return "mock" }

func (m *mockLLM) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return &llm.ChatResponse{Content: m.responses[i]}, nil
	}
	return &llm.ChatResponse{Content: m.responses[len(m.responses)-1]}, nil
}

func fastRetry() narrative.RetryPolicy {
	return narrative.RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		Sleep:          func(ctx context.Context, d time.Duration) error { return nil },
	}
}

var feed = []Item{
	{Headline: "Apple earnings beat", Ticker: "AAPL", Source: "Reuters"},
	{Headline: "Fed holds rates", Ticker: "SPY"},
}

func TestBriefer_Brief(t *testing.T) {
	m := &mockLLM{responses: []string{
		"```json\n{\"summary\":\"Risk-on.\",\"impactful\":[\"Apple earnings beat\"],\"watch\":[\"CPI\"]}\n```",
	}}
	b := NewBriefer(m, fastRetry(), nil, nil, nil)

	brief := b.Brief(context.Background(), feed)
	assert.True(t, brief.Available)
	assert.Equal(t, "Risk-on.", brief.Summary)
	assert.Equal(t, []string{"Apple earnings beat"}, brief.Impactful)
	assert.Equal(t, []string{"CPI"}, brief.Watch)

	b.Brief(context.Background(), feed)
	assert.Equal(t, 1, m.calls)
}

func TestBriefer_RetriesThenSucceeds(t *testing.T) {
	m := &mockLLM{
		errs:      []error{errors.New("429"), nil},
		responses: []string{"", "not json", `{"summary":"ok"}`},
	}
	b := NewBriefer(m, fastRetry(), nil, nil, nil)

	brief := b.Brief(context.Background(), feed)
	assert.True(t, brief.Available)
	assert.Equal(t, "ok", brief.Summary)
	assert.Empty(t, brief.Impactful)
	assert.NotNil(t, brief.Watch)
	assert.Equal(t, 3, m.calls)
}

func TestBriefer_Placeholder(t *testing.T) {
	m := &mockLLM{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}, responses: []string{""}}
	b := NewBriefer(m, fastRetry(), nil, nil, nil)

	brief := b.Brief(context.Background(), feed)
	assert.False(t, brief.Available)
	assert.Equal(t, BriefUnavailable, brief.Summary)
	assert.Empty(t, brief.Impactful)
	assert.Empty(t, brief.Watch)

	nilProvider := NewBriefer(nil, fastRetry(), nil, nil, nil)
	assert.False(t, nilProvider.Brief(context.Background(), feed).Available)
}

func TestBriefer_EmptyFeed(t *testing.T) {
	m := &mockLLM{responses: []string{"{}"}}
	b := NewBriefer(m, fastRetry(), nil, nil, nil)

	brief := b.Brief(context.Background(), nil)
	assert.True(t, brief.Available)
	assert.Equal(t, 0, m.calls)
}

func TestHeadlinesBlock(t *testing.T) {
	got := headlinesBlock(feed)
	assert.Equal(t, "- [AAPL] Apple earnings beat (Reuters)\n- [SPY] Fed holds rates\n", got)
}

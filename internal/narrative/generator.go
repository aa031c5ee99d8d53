package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/folio/internal/cache"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/llm"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a narrative is reused for identical input.
	DefaultTTL = 15 * time.Minute

	defaultMaxTokens = 1024
)

// Generator turns an Input into a Result using an LLM.
type Generator struct {
	llm       llm.Provider
	retry     RetryPolicy
	cache     *cache.Store[string, Result]
	logger    *zap.Logger
	metrics   *metrics.Registry
	tracer    *trace.Tracer
	maxTokens int
	ttl       time.Duration
	now       func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithMetrics(m *metrics.Registry) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

func WithTracer(t *trace.Tracer) GeneratorOption {
	return func(g *Generator) { g.tracer = t }
}

// WithRetry replaces the default retry policy.
func WithRetry(p RetryPolicy) GeneratorOption {
	return func(g *Generator) { g.retry = p }
}

// WithTTL sets the result cache lifetime. Zero or less disables expiry.
func WithTTL(ttl time.Duration) GeneratorOption {
	return func(g *Generator) { g.ttl = ttl }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithClock replaces the cache clock (for testing).
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator. provider may be nil, in which case
// every call fails with ErrNarrativeFailed.
func NewGenerator(provider llm.Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{
		llm:       provider,
		retry:     DefaultRetryPolicy(),
		logger:    zap.NewNop(),
		maxTokens: defaultMaxTokens,
		ttl:       DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.cache = cache.New[string, Result](g.ttl).WithClock(g.now)
	g.cache.OnLookup = g.metrics.CacheObserver("narrative")
	return g
}

// Generate returns the narrative for in. Results are memoised by the
// full input, so repeated calls with identical input do not reach the
// model. Any failure after retries is reported as ErrNarrativeFailed.
func (g *Generator) Generate(ctx context.Context, in Input) (Result, error) {
	key := in.Key()
	if r, ok := g.cache.Get(key); ok {
		return r, nil
	}

	ctx, span := g.tracer.Start(ctx, "narrative.generate", "ticker", in.Ticker)
	defer span.End()

	if g.llm == nil {
		err := core.WrapError(core.ErrNarrativeFailed, errors.New("no llm provider configured"))
		trace.Fail(span, err)
		g.metrics.RecordNarrative(metrics.StatusError)
		return Result{}, err
	}

	req := llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(in)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.3,
		JSONMode:    true,
	}

	var result Result
	attempt := 0
	err := g.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		resp, err := g.llm.Chat(ctx, req)
		if err != nil {
			g.logger.Debug("narrative attempt failed",
				zap.String("ticker", in.Ticker),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return fmt.Errorf("%s: %w", g.llm.Name(), err)
		}
		r, err := parseResponse(resp.Content)
		if err != nil {
			g.logger.Debug("narrative response rejected",
				zap.String("ticker", in.Ticker),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return fmt.Errorf("parsing response: %w", err)
		}
		result = r
		return nil
	})
	if err != nil {
		wrapped := core.WrapError(core.ErrNarrativeFailed, err)
		trace.Fail(span, wrapped)
		g.metrics.RecordNarrative(metrics.StatusError)
		g.logger.Warn("narrative failed",
			zap.String("ticker", in.Ticker),
			zap.Error(err))
		return Result{}, wrapped
	}

	g.cache.Set(key, result)
	g.metrics.RecordNarrative(metrics.StatusOK)
	return result, nil
}

// Forget drops any memoised result for in.
func (g *Generator) Forget(in Input) {
	g.cache.Delete(in.Key())
}

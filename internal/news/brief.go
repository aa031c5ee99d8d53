package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/cache"
	"github.com/newthinker/folio/internal/llm"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

const (
	// BriefUnavailable is the summary of a brief that could not be produced.
	BriefUnavailable = "News brief unavailable right now."

	briefTTL       = time.Hour
	maxBriefItems  = 60
	briefMaxTokens = 1024
)

// Brief is an LLM digest of a headline feed.
type Brief struct {
	Summary   string   `json:"summary"`
	Impactful []string `json:"impactful"`
	Watch     []string `json:"watch"`
	Available bool     `json:"available"`
}

func placeholderBrief() Brief {
	return Brief{Summary: BriefUnavailable, Impactful: []string{}, Watch: []string{}}
}

// Briefer asks an LLM to pick the most impactful headlines, summarise
// the day and list what to watch.
type Briefer struct {
	llm     llm.Provider
	retry   narrative.RetryPolicy
	cache   *cache.Store[string, Brief]
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  *trace.Tracer
}

// NewBriefer creates a briefer. provider may be nil, in which case every
// brief is the placeholder.
func NewBriefer(provider llm.Provider, retry narrative.RetryPolicy, logger *zap.Logger, m *metrics.Registry, t *trace.Tracer) *Briefer {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Briefer{
		llm:     provider,
		retry:   retry,
		cache:   cache.New[string, Brief](briefTTL),
		logger:  logger,
		metrics: m,
		tracer:  t,
	}
	b.cache.OnLookup = m.CacheObserver("news_brief")
	return b
}

// Brief digests items. It never fails: on any error the placeholder
// brief is returned with Available false.
func (b *Briefer) Brief(ctx context.Context, items []Item) Brief {
	if len(items) == 0 {
		return Brief{Summary: "No headlines for these holdings.", Impactful: []string{}, Watch: []string{}, Available: true}
	}

	block := headlinesBlock(items)
	if cached, ok := b.cache.Get(block); ok {
		return cached
	}

	ctx, span := b.tracer.Start(ctx, "news.brief")
	defer span.End()

	if b.llm == nil {
		return placeholderBrief()
	}

	req := llm.ChatRequest{
		SystemPrompt: briefSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: "HEADLINES:\n" + block},
		},
		MaxTokens:   briefMaxTokens,
		Temperature: 0.2,
		JSONMode:    true,
	}

	var brief Brief
	err := b.retry.Do(ctx, func(ctx context.Context) error {
		resp, err := b.llm.Chat(ctx, req)
		if err != nil {
			return err
		}
		brief, err = parseBrief(resp.Content)
		return err
	})
	if err != nil {
		trace.Fail(span, err)
		b.metrics.RecordNarrative(metrics.StatusError)
		b.logger.Warn("news brief failed", zap.Error(err))
		return placeholderBrief()
	}

	b.metrics.RecordNarrative(metrics.StatusOK)
	b.cache.Set(block, brief)
	return brief
}

func parseBrief(content string) (Brief, error) {
	var out struct {
		Summary   string   `json:"summary"`
		Impactful []string `json:"impactful"`
		Watch     []string `json:"watch"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(content)), &out); err != nil {
		return Brief{}, fmt.Errorf("parsing brief: %w", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return Brief{}, errors.New("brief has no summary")
	}
	b := Brief{
		Summary:   strings.TrimSpace(out.Summary),
		Impactful: out.Impactful,
		Watch:     out.Watch,
		Available: true,
	}
	if b.Impactful == nil {
		b.Impactful = []string{}
	}
	if b.Watch == nil {
		b.Watch = []string{}
	}
	return b, nil
}

func headlinesBlock(items []Item) string {
	var sb strings.Builder
	for i, it := range items {
		if i == maxBriefItems {
			break
		}
		fmt.Fprintf(&sb, "- [%s] %s", it.Ticker, it.Headline)
		if it.Source != "" {
			fmt.Fprintf(&sb, " (%s)", it.Source)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

const briefSystemPrompt = `You are a buy-side equity and macro analyst writing a tight morning news brief for a portfolio manager.

Given portfolio-linked headlines (most recent first):
A) impactful: pick up to 5 headlines that matter most (market-moving or thesis-relevant).
B) summary: one short paragraph on what the news implies (risk-on/off, sector themes).
C) watch: up to 5 concrete things to monitor (earnings, guidance, regulatory steps, launches, macro prints).

Use only what the headlines imply. Be crisp.
Respond with JSON: {"summary": string, "impactful": [string], "watch": [string]}`

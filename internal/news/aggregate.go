package news

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/cache"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTTL bounds how often one ticker's news is requested.
	DefaultTTL = 20 * time.Minute

	// DefaultLookbackDays is how far back headlines are requested.
	DefaultLookbackDays = 1
)

type fetchKey struct {
	ticker string
	from   string
	to     string
}

// Aggregator fetches news for many holdings and merges it into one feed.
type Aggregator struct {
	provider Provider
	cache    *cache.Store[fetchKey, []Article]
	lookback int
	logger   *zap.Logger
	metrics  *metrics.Registry
	tracer   *trace.Tracer
	ttl      time.Duration
	now      func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func WithTracer(t *trace.Tracer) Option {
	return func(a *Aggregator) { a.tracer = t }
}

// WithTTL sets the per-ticker cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(a *Aggregator) { a.ttl = ttl }
}

// WithLookbackDays sets how many days back headlines are requested.
func WithLookbackDays(days int) Option {
	return func(a *Aggregator) {
		if days > 0 {
			a.lookback = days
		}
	}
}

// WithClock replaces the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an aggregator over provider.
func NewAggregator(provider Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		provider: provider,
		lookback: DefaultLookbackDays,
		logger:   zap.NewNop(),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.cache = cache.New[fetchKey, []Article](a.ttl).WithClock(a.now)
	a.cache.OnLookup = a.metrics.CacheObserver("news")
	return a
}

// Aggregate fetches headlines for every holding, dedupes them on
// (headline, url), tags each with its category and holding, and sorts
// newest first. A ticker whose fetch fails contributes nothing.
func (a *Aggregator) Aggregate(ctx context.Context, holdings []Holding) []Item {
	ctx, span := a.tracer.Start(ctx, "news.aggregate")
	defer span.End()

	to := a.now()
	from := to.AddDate(0, 0, -a.lookback)

	items := []Item{}
	seen := make(map[string]struct{})
	fetched := make(map[string]struct{})

	for _, h := range holdings {
		ticker := strings.TrimSpace(h.Ticker)
		if ticker == "" {
			continue
		}
		if _, ok := fetched[strings.ToUpper(ticker)]; ok {
			continue
		}
		fetched[strings.ToUpper(ticker)] = struct{}{}

		articles, err := a.fetch(ctx, ticker, from, to)
		if err != nil {
			a.logger.Warn("news fetch failed",
				zap.String("ticker", ticker),
				zap.Error(err))
			continue
		}

		for _, art := range articles {
			headline := strings.TrimSpace(art.Headline)
			if headline == "" {
				continue
			}
			url := strings.TrimSpace(art.URL)
			key := strings.ToLower(headline) + "\x00" + url
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			items = append(items, Item{
				Headline:    headline,
				Source:      strings.TrimSpace(art.Source),
				URL:         url,
				PublishedAt: art.PublishedAt,
				Ticker:      ticker,
				Holding:     h.Name,
				Category:    Classify(headline),
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	return items
}

func (a *Aggregator) fetch(ctx context.Context, ticker string, from, to time.Time) ([]Article, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("no news provider configured")
	}
	key := fetchKey{
		ticker: strings.ToUpper(ticker),
		from:   from.Format(time.DateOnly),
		to:     to.Format(time.DateOnly),
	}
	return a.cache.GetOrLoad(key, func() ([]Article, error) {
		articles, err := a.provider.FetchNews(ctx, ticker, from, to)
		if err != nil {
			a.metrics.RecordNewsFetch(a.provider.Name(), metrics.StatusError)
			return nil, err
		}
		a.metrics.RecordNewsFetch(a.provider.Name(), metrics.StatusOK)
		return articles, nil
	})
}

// Filter keeps items whose category is in categories (all when empty)
// and returns at most max of them (no cap when max <= 0).
func Filter(items []Item, categories []Category, max int) []Item {
	allowed := make(map[Category]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if len(allowed) > 0 {
			if _, ok := allowed[it.Category]; !ok {
				continue
			}
		}
		out = append(out, it)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

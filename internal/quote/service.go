package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/cache"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

// DefaultTTL bounds how often one ticker is requested upstream.
const DefaultTTL = 15 * time.Minute

type cacheKey struct {
	ticker   string
	category core.Category
	window   string
}

// Service resolves quotes by category and memoises them.
//
// Get never fails: any upstream problem yields an all-absent quote.
type Service struct {
	history HistorySource
	spot    []SpotSource
	cache   *cache.Store[cacheKey, core.Quote]
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  *trace.Tracer
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t *trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTTL sets the cache lifetime. Zero or less disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithClock replaces the cache clock (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a quote service. Spot sources are tried in order.
func NewService(history HistorySource, spot []SpotSource, opts ...Option) *Service {
	s := &Service{
		history: history,
		spot:    spot,
		logger:  zap.NewNop(),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = cache.New[cacheKey, core.Quote](s.ttl).WithClock(s.now)
	s.cache.OnLookup = s.metrics.CacheObserver("quotes")
	return s
}

// Get returns the quote for ticker. Equity and other tickers are priced
// from history over window; crypto tickers from the spot sources.
func (s *Service) Get(ctx context.Context, ticker string, category core.Category, window string) core.Quote {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return core.Quote{}
	}
	if category == core.CategoryCrypto {
		window = ""
	}

	key := cacheKey{ticker: strings.ToUpper(ticker), category: category, window: window}
	q, err := s.cache.GetOrLoad(key, func() (core.Quote, error) {
		return s.fetch(ctx, ticker, category, window)
	})
	if err != nil {
		s.logger.Warn("quote unavailable",
			zap.String("ticker", ticker),
			zap.String("category", string(category)),
			zap.Error(err))
		return core.Quote{}
	}
	return q
}

// GetMany prices every distinct ticker in positions, keyed by ticker.
// Positions without a ticker are skipped.
func (s *Service) GetMany(ctx context.Context, positions []core.Position, window string) map[string]core.Quote {
	quotes := make(map[string]core.Quote, len(positions))
	for _, p := range positions {
		if p.Ticker == "" {
			continue
		}
		if _, ok := quotes[p.Ticker]; ok {
			continue
		}
		quotes[p.Ticker] = s.Get(ctx, p.Ticker, p.Category, window)
	}
	return quotes
}

func (s *Service) fetch(ctx context.Context, ticker string, category core.Category, window string) (core.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "quote.fetch", "ticker", ticker, "category", string(category))
	defer span.End()

	var (
		q   core.Quote
		err error
	)
	if category == core.CategoryCrypto {
		q, err = s.fetchSpot(ctx, ticker)
	} else {
		q, err = s.fetchHistory(ctx, ticker, window)
	}
	if err != nil {
		trace.Fail(span, err)
	}
	return q, err
}

func (s *Service) fetchHistory(ctx context.Context, ticker, window string) (core.Quote, error) {
	if s.history == nil {
		return core.Quote{}, fmt.Errorf("no history source configured")
	}
	bars, err := s.history.FetchHistory(ctx, ticker, window)
	if err != nil {
		s.metrics.RecordQuoteFetch(s.history.Name(), metrics.StatusError)
		return core.Quote{}, core.WrapError(core.ErrSourceUnavailable, err)
	}
	s.metrics.RecordQuoteFetch(s.history.Name(), metrics.StatusOK)

	q := FromHistory(bars)
	if q.Absent() {
		return q, core.WrapError(core.ErrSourceUnavailable, fmt.Errorf("empty history for %s", ticker))
	}
	return q, nil
}

func (s *Service) fetchSpot(ctx context.Context, ticker string) (core.Quote, error) {
	if len(s.spot) == 0 {
		return core.Quote{}, fmt.Errorf("no spot source configured")
	}
	var lastErr error
	for _, src := range s.spot {
		price, err := src.FetchSpot(ctx, ticker)
		if err != nil {
			s.metrics.RecordQuoteFetch(src.Name(), metrics.StatusError)
			s.logger.Debug("spot source failed, trying next",
				zap.String("source", src.Name()),
				zap.String("ticker", ticker),
				zap.Error(err))
			lastErr = fmt.Errorf("%s: %w", src.Name(), err)
			continue
		}
		s.metrics.RecordQuoteFetch(src.Name(), metrics.StatusOK)
		return FromSpot(price), nil
	}
	return core.Quote{}, core.WrapError(core.ErrSourceUnavailable, lastErr)
}

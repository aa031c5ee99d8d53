package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/folio/internal/config"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/ledger"
	"github.com/newthinker/folio/internal/llm"
	"github.com/newthinker/folio/internal/llm/factory"
	"github.com/newthinker/folio/internal/macro"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/newthinker/folio/internal/news"
	"github.com/newthinker/folio/internal/news/finnhub"
	"github.com/newthinker/folio/internal/quote"
	"github.com/newthinker/folio/internal/quote/binance"
	"github.com/newthinker/folio/internal/quote/coingecko"
	"github.com/newthinker/folio/internal/quote/okx"
	"github.com/newthinker/folio/internal/quote/yahoo"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

// Build wires an App from configuration. Optional features whose
// credentials are absent are left disabled.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Registry, t *trace.Tracer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	source, err := ledgerSource(cfg.Ledger)
	if err != nil {
		return nil, err
	}
	loader := ledger.NewLoader(source,
		ledger.WithLogger(logger.Named("ledger")),
		ledger.WithMetrics(m),
		ledger.WithTracer(t))

	quotes := quote.NewService(
		yahoo.New(cfg.Quotes.RequestTimeout),
		spotSources(cfg.Quotes),
		quote.WithLogger(logger.Named("quote")),
		quote.WithMetrics(m),
		quote.WithTracer(t),
		quote.WithTTL(cfg.Quotes.CacheTTL))

	c := Components{
		Ledger:      loader,
		LedgerID:    cfg.Ledger.ID,
		Quotes:      quotes,
		RangeWindow: cfg.Quotes.RangeWindow,
	}

	indicators := make([]macro.Indicator, 0, len(cfg.Macro.Indicators))
	for _, ind := range cfg.Macro.Indicators {
		indicators = append(indicators, macro.Indicator{
			Name:     ind.Name,
			Ticker:   ind.Ticker,
			Category: core.ParseCategory(ind.Category),
		})
	}
	c.Macro = macro.NewBoard(quotes, indicators, cfg.Quotes.DayChangeWindow, t)

	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		provider, err = factory.New(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("creating llm provider: %w", err)
		}
	} else {
		logger.Info("no llm provider configured, narratives and news briefs disabled")
	}

	retry := retryPolicy(cfg.Narrative.Retry)
	if provider != nil {
		gen := narrative.NewGenerator(provider,
			narrative.WithLogger(logger.Named("narrative")),
			narrative.WithMetrics(m),
			narrative.WithTracer(t),
			narrative.WithRetry(retry),
			narrative.WithTTL(cfg.Narrative.CacheTTL),
			narrative.WithMaxTokens(cfg.Narrative.MaxTokens))
		c.Narratives = narrative.NewBatch(gen,
			narrative.WithDelay(cfg.Narrative.BatchDelay),
			narrative.WithBatchLogger(logger.Named("batch")),
			narrative.WithBatchMetrics(m),
			narrative.WithBatchTracer(t))
	}

	if cfg.News.FinnhubAPIKey != "" {
		c.News = news.NewAggregator(
			finnhub.New(cfg.News.FinnhubAPIKey, cfg.Quotes.RequestTimeout),
			news.WithLogger(logger.Named("news")),
			news.WithMetrics(m),
			news.WithTracer(t),
			news.WithTTL(cfg.News.CacheTTL),
			news.WithLookbackDays(cfg.News.LookbackDays))
		if provider != nil {
			c.Briefer = news.NewBriefer(provider, retry, logger.Named("brief"), m, t)
		}
	} else {
		logger.Info("no finnhub api key configured, news disabled")
	}

	return New(c, logger, m, t), nil
}

func ledgerSource(cfg config.LedgerConfig) (ledger.Source, error) {
	switch cfg.Source {
	case "", "sheets":
		opts := []ledger.SheetsOption{ledger.WithToken(cfg.Token)}
		if cfg.BaseURL != "" {
			opts = append(opts, ledger.WithBaseURL(cfg.BaseURL))
		}
		return ledger.NewSheets(opts...), nil
	case "file":
		return ledger.NewFile(cfg.Dir), nil
	case "s3":
		return ledger.NewS3(ledger.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		}), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown ledger source: %q", cfg.Source))
	}
}

func spotSources(cfg config.QuotesConfig) []quote.SpotSource {
	var out []quote.SpotSource
	for _, name := range cfg.CryptoProviders {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "coingecko":
			out = append(out, coingecko.New(cfg.CoinGeckoAPIKey, cfg.RequestTimeout))
		case "binance":
			out = append(out, binance.New(cfg.RequestTimeout))
		case "okx":
			out = append(out, okx.New(cfg.RequestTimeout))
		}
	}
	return out
}

func retryPolicy(cfg config.RetryConfig) narrative.RetryPolicy {
	p := narrative.DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoff > 0 {
		p.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		p.MaxBackoff = cfg.MaxBackoff
	}
	if cfg.Multiplier > 0 {
		p.Multiplier = cfg.Multiplier
	}
	return p
}

// Package app is the request-driven pipeline behind every page and
// command: load the ledger, price it, value it, and decorate it with
// movers, narratives, news and macro readings.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/ledger"
	"github.com/newthinker/folio/internal/macro"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/movers"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/newthinker/folio/internal/news"
	"github.com/newthinker/folio/internal/quote"
	"github.com/newthinker/folio/internal/trace"
	"github.com/newthinker/folio/internal/valuation"
	"go.uber.org/zap"
)

// Components are the collaborators an App runs on. Ledger and Quotes are
// required; the rest may be nil, which disables the matching operation.
type Components struct {
	Ledger   *ledger.Loader
	LedgerID string
	Quotes   *quote.Service

	// RangeWindow is the history window for price and 52-week range.
	RangeWindow string

	Narratives *narrative.Batch
	News       *news.Aggregator
	Briefer    *news.Briefer
	Macro      *macro.Board
}

// App is the main application orchestrator
type App struct {
	c       Components
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  *trace.Tracer
	now     func() time.Time
}

func disabled(feature string) error {
	return core.WrapError(core.ErrDisabled, fmt.Errorf("%s: no provider configured", feature))
}

// New creates a new App instance
func New(c Components, logger *zap.Logger, m *metrics.Registry, t *trace.Tracer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.RangeWindow == "" {
		c.RangeWindow = quote.WindowRange
	}
	return &App{
		c:       c,
		logger:  logger,
		metrics: m,
		tracer:  t,
		now:     time.Now,
	}
}

// PortfolioView is a valued, display-ordered slice of the ledger.
type PortfolioView struct {
	View        View             `json:"view"`
	Currency    string           `json:"currency"`
	Rows        []valuation.Row  `json:"rows"`
	Totals      valuation.Totals `json:"totals"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// MoversView is the gainers and losers of a view.
type MoversView struct {
	View        View          `json:"view"`
	Result      movers.Result `json:"result"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NarrativeOptions adjusts a narrative run.
type NarrativeOptions struct {
	// Refresh regenerates every position instead of reusing kept results.
	Refresh bool
}

// headlinesPerPosition caps the headlines passed into one narrative.
const headlinesPerPosition = 5

// NewsFilter narrows the news feed.
type NewsFilter struct {
	Categories []news.Category
	Max        int
	Brief      bool
}

// NewsView is a filtered headline feed with an optional brief.
type NewsView struct {
	View        View        `json:"view"`
	Items       []news.Item `json:"items"`
	Total       int         `json:"total"`
	Brief       *news.Brief `json:"brief,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Portfolio loads, prices and values the ledger for view. A ledger
// failure aborts; quote failures only leave rows unpriced.
func (a *App) Portfolio(ctx context.Context, view View) (*PortfolioView, error) {
	start := time.Now()
	defer a.observe("portfolio", start)

	ctx, span := a.tracer.Start(ctx, "app.portfolio", "view", string(view))
	defer span.End()

	p, err := a.value(ctx, view)
	if err != nil {
		trace.Fail(span, err)
		return nil, err
	}
	return &PortfolioView{
		View:        view,
		Currency:    view.Currency(),
		Rows:        valuation.SortByMarketValue(p.Rows),
		Totals:      p.Totals,
		GeneratedAt: a.now(),
	}, nil
}

// Movers ranks the view's positions by day change.
func (a *App) Movers(ctx context.Context, view View, topN int) (*MoversView, error) {
	start := time.Now()
	defer a.observe("movers", start)

	ctx, span := a.tracer.Start(ctx, "app.movers", "view", string(view))
	defer span.End()

	p, err := a.value(ctx, view)
	if err != nil {
		trace.Fail(span, err)
		return nil, err
	}
	return &MoversView{
		View:        view,
		Result:      movers.Rank(movers.FromPortfolio(p), topN),
		GeneratedAt: a.now(),
	}, nil
}

// Narratives runs the narrative batch over the view's quoted positions,
// with each position's recent headlines when news is configured.
// Positions that succeeded in an earlier run on the same input are not
// recomputed unless opts.Refresh is set.
func (a *App) Narratives(ctx context.Context, view View, opts NarrativeOptions) (*narrative.Report, error) {
	if a.c.Narratives == nil {
		return nil, disabled("narratives")
	}
	start := time.Now()
	defer a.observe("narratives", start)

	ctx, span := a.tracer.Start(ctx, "app.narratives", "view", string(view))
	defer span.End()

	p, err := a.value(ctx, view)
	if err != nil {
		trace.Fail(span, err)
		return nil, err
	}

	inputs := make([]narrative.Input, 0, len(p.Rows))
	for _, r := range valuation.SortByMarketValue(p.Rows) {
		if r.Position.Ticker == "" {
			continue
		}
		inputs = append(inputs, narrative.FromRow(r))
	}
	a.attachHeadlines(ctx, inputs)

	var runOpts []narrative.RunOption
	if opts.Refresh {
		runOpts = append(runOpts, narrative.Refresh())
	}
	report := a.c.Narratives.Run(ctx, inputs, runOpts...)
	return &report, nil
}

// attachHeadlines fills each input's News with its newest headlines.
func (a *App) attachHeadlines(ctx context.Context, inputs []narrative.Input) {
	if a.c.News == nil || len(inputs) == 0 {
		return
	}
	holdings := make([]news.Holding, 0, len(inputs))
	for _, in := range inputs {
		holdings = append(holdings, news.Holding{Ticker: in.Ticker, Name: in.AssetName})
	}

	byTicker := make(map[string][]string)
	for _, it := range a.c.News.Aggregate(ctx, holdings) {
		key := strings.ToUpper(it.Ticker)
		if len(byTicker[key]) < headlinesPerPosition {
			byTicker[key] = append(byTicker[key], it.Headline)
		}
	}
	for i := range inputs {
		inputs[i].News = byTicker[strings.ToUpper(inputs[i].Ticker)]
	}
}

// RetryNarrative regenerates one position's narrative.
func (a *App) RetryNarrative(ctx context.Context, ticker string) (narrative.Item, error) {
	if a.c.Narratives == nil {
		return narrative.Item{}, disabled("narratives")
	}
	ctx, span := a.tracer.Start(ctx, "app.retry_narrative", "ticker", ticker)
	defer span.End()

	item, err := a.c.Narratives.Retry(ctx, ticker)
	if err != nil {
		trace.Fail(span, err)
	}
	return item, err
}

// NarrativeItems returns the latest stored narrative per position.
func (a *App) NarrativeItems() []narrative.Item {
	if a.c.Narratives == nil {
		return nil
	}
	return a.c.Narratives.Items()
}

// News aggregates headlines for the view's holdings.
func (a *App) News(ctx context.Context, view View, filter NewsFilter) (*NewsView, error) {
	if a.c.News == nil {
		return nil, disabled("news")
	}
	start := time.Now()
	defer a.observe("news", start)

	ctx, span := a.tracer.Start(ctx, "app.news", "view", string(view))
	defer span.End()

	positions, err := a.load(ctx, view)
	if err != nil {
		trace.Fail(span, err)
		return nil, err
	}

	holdings := make([]news.Holding, 0, len(positions))
	for _, p := range ledger.WithTicker(positions) {
		holdings = append(holdings, news.Holding{Ticker: p.Ticker, Name: p.AssetName})
	}

	all := a.c.News.Aggregate(ctx, holdings)
	items := news.Filter(all, filter.Categories, filter.Max)
	out := &NewsView{
		View:        view,
		Items:       items,
		Total:       len(all),
		GeneratedAt: a.now(),
	}
	if filter.Brief && a.c.Briefer != nil {
		b := a.c.Briefer.Brief(ctx, items)
		out.Brief = &b
	}
	return out, nil
}

// Macro snapshots the indicator board.
func (a *App) Macro(ctx context.Context) ([]macro.Reading, error) {
	if a.c.Macro == nil {
		return nil, disabled("macro")
	}
	start := time.Now()
	defer a.observe("macro", start)
	return a.c.Macro.Snapshot(ctx), nil
}

func (a *App) load(ctx context.Context, view View) ([]core.Position, error) {
	positions, err := a.c.Ledger.Load(ctx, a.c.LedgerID)
	if err != nil {
		a.logger.Error("ledger load failed",
			zap.String("view", string(view)),
			zap.Error(err))
		return nil, err
	}
	return view.apply(positions), nil
}

func (a *App) value(ctx context.Context, view View) (valuation.Portfolio, error) {
	positions, err := a.load(ctx, view)
	if err != nil {
		return valuation.Portfolio{}, err
	}
	quotes := a.c.Quotes.GetMany(ctx, positions, a.c.RangeWindow)

	_, span := a.tracer.Start(ctx, "valuation.value")
	p := valuation.Value(positions, quotes)
	span.End()

	if p.Totals.Unpriced > 0 {
		a.logger.Debug("positions without price",
			zap.String("view", string(view)),
			zap.Int("unpriced", p.Totals.Unpriced))
	}
	return p, nil
}

func (a *App) observe(view string, start time.Time) {
	a.metrics.RecordRender(view, time.Since(start).Seconds())
}

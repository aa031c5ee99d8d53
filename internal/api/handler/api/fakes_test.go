package api

import (
	"context"
	"time"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/macro"
	"github.com/newthinker/folio/internal/movers"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/newthinker/folio/internal/news"
	"github.com/newthinker/folio/internal/valuation"
)

// fakeApp records the arguments it was called with and returns canned data.
type fakeApp struct {
	err error

	view   app.View
	topN   int
	filter app.NewsFilter
	ticker string
	opts   app.NarrativeOptions

	items []narrative.Item
	runs  chan struct{}
}

func (f *fakeApp) Portfolio(_ context.Context, view app.View) (*app.PortfolioView, error) {
	f.view = view
	if f.err != nil {
		return nil, f.err
	}
	return &app.PortfolioView{
		View:     view,
		Currency: view.Currency(),
		Rows: []valuation.Row{{
			Position:    core.Position{AssetName: "Apple", Ticker: "AAPL", Units: 10, AvgPrice: 150},
			PriceKnown:  true,
			Invested:    1500,
			MarketValue: 1800,
			PnLAbs:      300,
			PnLPct:      core.Known(20),
			WeightPct:   core.Known(100),
		}, {
			Position: core.Position{AssetName: "Tesla", Ticker: "TSLA", Units: 10, AvgPrice: 100},
			Invested: 1000,
			PnLAbs:   -1000,
			PnLPct:   core.Known(-100),
		}},
		GeneratedAt: time.Now(),
	}, nil
}

func (f *fakeApp) Movers(_ context.Context, view app.View, topN int) (*app.MoversView, error) {
	f.view, f.topN = view, topN
	if f.err != nil {
		return nil, f.err
	}
	return &app.MoversView{
		View: view,
		Result: movers.Result{
			Gainers: []movers.Mover{{Ticker: "AAPL", DayChangePct: 2.5}},
			Losers:  []movers.Mover{},
			HasData: true,
		},
	}, nil
}

func (f *fakeApp) Narratives(_ context.Context, view app.View, opts app.NarrativeOptions) (*narrative.Report, error) {
	f.view, f.opts = view, opts
	if f.runs != nil {
		defer func() { f.runs <- struct{}{} }()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &narrative.Report{
		RunID:     "run-1",
		Items:     f.items,
		Succeeded: len(f.items),
	}, nil
}

func (f *fakeApp) RetryNarrative(_ context.Context, ticker string) (narrative.Item, error) {
	f.ticker = ticker
	if f.err != nil {
		return narrative.Item{Ticker: ticker, Outcome: narrative.OutcomeFailed}, f.err
	}
	return narrative.Item{Ticker: ticker, Outcome: narrative.OutcomeSucceeded}, nil
}

func (f *fakeApp) NarrativeItems() []narrative.Item {
	return f.items
}

func (f *fakeApp) News(_ context.Context, view app.View, filter app.NewsFilter) (*app.NewsView, error) {
	f.view, f.filter = view, filter
	if f.err != nil {
		return nil, f.err
	}
	return &app.NewsView{
		View:  view,
		Items: []news.Item{{Headline: "Apple beats earnings", Ticker: "AAPL", Category: news.CategoryEarnings}},
		Total: 1,
	}, nil
}

func (f *fakeApp) Macro(context.Context) ([]macro.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []macro.Reading{
		{Name: "VIX", Ticker: "^VIX", Price: core.Known(14.2), DayChangePct: core.Known(-1.1), Direction: macro.DirectionDown},
		{Name: "Gold", Ticker: "GC=F", Price: core.NA, DayChangePct: core.NA, Direction: macro.DirectionUnknown},
	}, nil
}

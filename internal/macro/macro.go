// Package macro reports a fixed board of market indicators (indices,
// FX, commodities, rates) with their latest level and day change.
package macro

import (
	"context"
	"strings"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/quote"
	"github.com/newthinker/folio/internal/trace"
)

// Direction of an indicator's day move.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionFlat    Direction = "flat"
	DirectionUnknown Direction = "unknown"
)

// DirectionOf classifies a day change. An unavailable change is
// unknown, never down.
func DirectionOf(change core.Float) Direction {
	v, ok := change.Get()
	switch {
	case !ok:
		return DirectionUnknown
	case v > 0:
		return DirectionUp
	case v < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// Indicator is one board entry.
type Indicator struct {
	Name     string
	Ticker   string
	Category core.Category
}

// Reading is an indicator's latest snapshot.
type Reading struct {
	Name         string     `json:"name"`
	Ticker       string     `json:"ticker"`
	Price        core.Float `json:"price"`
	DayChangePct core.Float `json:"day_change_pct"`
	Direction    Direction  `json:"direction"`
}

// Quoter is the part of quote.Service the board needs.
type Quoter interface {
	Get(ctx context.Context, ticker string, category core.Category, window string) core.Quote
}

var _ Quoter = (*quote.Service)(nil)

// Board snapshots a configured list of indicators.
type Board struct {
	quotes     Quoter
	indicators []Indicator
	window     string
	tracer     *trace.Tracer
}

// NewBoard creates a board. window is the short history window used for
// the day change; empty means quote.WindowDayChange.
func NewBoard(quotes Quoter, indicators []Indicator, window string, t *trace.Tracer) *Board {
	if window == "" {
		window = quote.WindowDayChange
	}
	return &Board{
		quotes:     quotes,
		indicators: indicators,
		window:     window,
		tracer:     t,
	}
}

// Indicators returns the configured board.
func (b *Board) Indicators() []Indicator {
	return append([]Indicator(nil), b.indicators...)
}

// Snapshot returns one reading per indicator, in board order. Missing
// data stays unavailable.
func (b *Board) Snapshot(ctx context.Context) []Reading {
	ctx, span := b.tracer.Start(ctx, "macro.snapshot")
	defer span.End()

	out := make([]Reading, 0, len(b.indicators))
	for _, ind := range b.indicators {
		category := ind.Category
		if category == "" {
			category = core.CategoryEquity
		}
		q := b.quotes.Get(ctx, strings.TrimSpace(ind.Ticker), category, b.window)
		out = append(out, Reading{
			Name:         ind.Name,
			Ticker:       ind.Ticker,
			Price:        q.CurrentPrice,
			DayChangePct: q.DayChangePct,
			Direction:    DirectionOf(q.DayChangePct),
		})
	}
	return out
}

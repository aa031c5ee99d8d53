// Package quote turns upstream price data into core.Quote snapshots.
package quote

import (
	"context"
	"time"

	"github.com/newthinker/folio/internal/core"
	"gonum.org/v1/gonum/floats"
)

// Lookback windows understood by history sources.
const (
	WindowRange     = "1y" // 52-week high/low
	WindowDayChange = "5d" // day-over-day change
)

// Bar is one daily bar. Upstream series contain gaps, so every price may
// be unavailable.
type Bar struct {
	Time  time.Time
	High  core.Float
	Low   core.Float
	Close core.Float
}

// HistorySource returns a trailing daily price history.
type HistorySource interface {
	Name() string
	FetchHistory(ctx context.Context, ticker, window string) ([]Bar, error)
}

// SpotSource returns a current spot price.
type SpotSource interface {
	Name() string
	FetchSpot(ctx context.Context, id string) (float64, error)
}

// FromHistory derives a quote from a daily series.
//
// The current price is the last available close. High and low span the
// High and Low series. Previous close and day change need at least two
// closes; day change is unavailable when the previous close is zero.
func FromHistory(bars []Bar) core.Quote {
	var closes, highs, lows []float64
	for _, b := range bars {
		if v, ok := b.Close.Get(); ok {
			closes = append(closes, v)
		}
		if v, ok := b.High.Get(); ok {
			highs = append(highs, v)
		}
		if v, ok := b.Low.Get(); ok {
			lows = append(lows, v)
		}
	}

	var q core.Quote
	if len(closes) > 0 {
		q.CurrentPrice = core.Known(closes[len(closes)-1])
	}
	if len(highs) > 0 {
		q.High52w = core.Known(floats.Max(highs))
	}
	if len(lows) > 0 {
		q.Low52w = core.Known(floats.Min(lows))
	}
	if len(closes) >= 2 {
		last, prev := closes[len(closes)-1], closes[len(closes)-2]
		q.PrevClose = core.Known(prev)
		if prev != 0 {
			q.DayChangePct = core.Known((last - prev) / prev * 100)
		}
	}
	return q
}

// FromSpot wraps a spot price. Spot sources carry no range or prior close.
func FromSpot(price float64) core.Quote {
	return core.Quote{CurrentPrice: core.Known(price)}
}

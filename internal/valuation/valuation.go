// Package valuation joins ledger positions with quotes and derives
// invested capital, market value, profit and loss, and portfolio weight.
//
// Everything here is pure computation: no I/O and no errors.
package valuation

import (
	"encoding/json"
	"sort"

	"github.com/newthinker/folio/internal/core"
	"gonum.org/v1/gonum/floats"
)

// Row is the valuation of one position.
type Row struct {
	Position core.Position `json:"position"`
	Quote    core.Quote    `json:"quote"`

	// Index is the position's row number in the ledger.
	Index int `json:"index"`

	// PriceKnown is false when the quote had no current price. Arithmetic
	// then uses a zero market value, but renderers show N/A.
	PriceKnown bool `json:"price_known"`

	Invested    float64    `json:"invested"`
	MarketValue float64    `json:"market_value"`
	PnLAbs      float64    `json:"pnl_abs"`
	PnLPct      core.Float `json:"pnl_pct"`
	WeightPct   core.Float `json:"weight_pct"`
}

// MarshalJSON encodes market value and P&L of an unpriced row as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type plain Row
	return json.Marshal(struct {
		plain
		MarketValue core.Float `json:"market_value"`
		PnLAbs      core.Float `json:"pnl_abs"`
		PnLPct      core.Float `json:"pnl_pct"`
	}{
		plain:       plain(r),
		MarketValue: r.DisplayMarketValue(),
		PnLAbs:      r.DisplayPnLAbs(),
		PnLPct:      r.DisplayPnLPct(),
	})
}

// Totals aggregates a portfolio. Invested covers every row; P&L covers
// priced rows only and is unavailable when none is priced.
type Totals struct {
	Invested       float64    `json:"invested"`
	PricedInvested float64    `json:"priced_invested"`
	MarketValue    float64    `json:"market_value"`
	PnLAbs         core.Float `json:"pnl_abs"`
	PnLPct         core.Float `json:"pnl_pct"`
	Priced         int        `json:"priced"`
	Unpriced       int        `json:"unpriced"`
}

// Portfolio is a valued ledger.
type Portfolio struct {
	Rows   []Row  `json:"rows"`
	Totals Totals `json:"totals"`
}

// Value values every position against quotes keyed by ticker. Rows keep
// ledger order; use SortByMarketValue for display order.
func Value(positions []core.Position, quotes map[string]core.Quote) Portfolio {
	rows := make([]Row, len(positions))
	var totals Totals

	for i, p := range positions {
		q := quotes[p.Ticker]
		row := Row{
			Position: p,
			Quote:    q,
			Index:    i,
			Invested: p.Units * p.AvgPrice,
		}

		price, ok := q.CurrentPrice.Get()
		row.PriceKnown = ok
		if ok {
			row.MarketValue = p.Units * price
			totals.Priced++
			totals.PricedInvested += row.Invested
		} else {
			totals.Unpriced++
		}

		row.PnLAbs = row.MarketValue - row.Invested
		row.PnLPct = percentOf(row.PnLAbs, row.Invested)

		totals.Invested += row.Invested
		totals.MarketValue += row.MarketValue
		rows[i] = row
	}

	for i := range rows {
		if rows[i].PriceKnown && totals.MarketValue > 0 {
			rows[i].WeightPct = core.Known(rows[i].MarketValue / totals.MarketValue * 100)
		}
	}

	totals.PnLAbs, totals.PnLPct = core.NA, core.NA
	if totals.Priced > 0 {
		pnl := totals.MarketValue - totals.PricedInvested
		totals.PnLAbs = core.Known(pnl)
		totals.PnLPct = percentOf(pnl, totals.PricedInvested)
	}

	return Portfolio{Rows: rows, Totals: totals}
}

// percentOf returns num/den*100, unavailable unless den > 0.
func percentOf(num, den float64) core.Float {
	if den <= 0 {
		return core.NA
	}
	return core.Known(num / den * 100)
}

// SortByMarketValue returns a copy of rows ordered by market value,
// largest first. Ties keep ledger order.
func SortByMarketValue(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MarketValue > out[j].MarketValue
	})
	return out
}

// DisplayMarketValue is the market value as shown to users: unavailable
// when the row has no price.
func (r Row) DisplayMarketValue() core.Float {
	if !r.PriceKnown {
		return core.NA
	}
	return core.Known(r.MarketValue)
}

// DisplayPnLAbs is unavailable when the row has no price.
func (r Row) DisplayPnLAbs() core.Float {
	if !r.PriceKnown {
		return core.NA
	}
	return core.Known(r.PnLAbs)
}

// DisplayPnLPct is unavailable when the row has no price, even though
// PnLPct itself is computed from the zero market value.
func (r Row) DisplayPnLPct() core.Float {
	if !r.PriceKnown {
		return core.NA
	}
	return r.PnLPct
}

// WeightSum adds the known weights of rows.
func WeightSum(rows []Row) float64 {
	weights := make([]float64, 0, len(rows))
	for _, r := range rows {
		if w, ok := r.WeightPct.Get(); ok {
			weights = append(weights, w)
		}
	}
	return floats.Sum(weights)
}

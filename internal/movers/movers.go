// Package movers ranks positions by day-over-day price change.
package movers

import (
	"sort"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/valuation"
)

// DefaultTopN is the number of gainers and losers shown by default.
const DefaultTopN = 3

// Entry is one ticker's day change.
type Entry struct {
	Ticker       string     `json:"ticker"`
	Name         string     `json:"name"`
	DayChangePct core.Float `json:"day_change_pct"`
}

// Mover is a ranked entry with a known change.
type Mover struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	DayChangePct float64 `json:"day_change_pct"`
}

// Result holds the ranking. HasData is false when no entry had a known
// change, which callers must render differently from an empty table.
type Result struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
	HasData bool    `json:"has_data"`
}

// Rank drops entries with an unavailable change, then returns up to topN
// gainers (largest change first) and losers (smallest change first).
// Lists are never padded. A non-positive topN uses DefaultTopN.
//
// Gainers only hold positive changes and losers only negative ones, so an
// entry never appears on both sides; a flat change is neither.
func Rank(entries []Entry, topN int) Result {
	if topN <= 0 {
		topN = DefaultTopN
	}

	valid := make([]Mover, 0, len(entries))
	for _, e := range entries {
		if v, ok := e.DayChangePct.Get(); ok {
			valid = append(valid, Mover{Ticker: e.Ticker, Name: e.Name, DayChangePct: v})
		}
	}

	res := Result{
		Gainers: []Mover{},
		Losers:  []Mover{},
		HasData: len(valid) > 0,
	}

	up := make([]Mover, 0, len(valid))
	down := make([]Mover, 0, len(valid))
	for _, m := range valid {
		switch {
		case m.DayChangePct > 0:
			up = append(up, m)
		case m.DayChangePct < 0:
			down = append(down, m)
		}
	}

	sort.SliceStable(up, func(i, j int) bool {
		return up[i].DayChangePct > up[j].DayChangePct
	})
	sort.SliceStable(down, func(i, j int) bool {
		return down[i].DayChangePct < down[j].DayChangePct
	})

	res.Gainers = append(res.Gainers, up[:min(topN, len(up))]...)
	res.Losers = append(res.Losers, down[:min(topN, len(down))]...)
	return res
}

// FromPortfolio builds entries from valued rows, one per ticker.
func FromPortfolio(p valuation.Portfolio) []Entry {
	seen := make(map[string]bool, len(p.Rows))
	entries := make([]Entry, 0, len(p.Rows))
	for _, r := range p.Rows {
		if r.Position.Ticker == "" || seen[r.Position.Ticker] {
			continue
		}
		seen[r.Position.Ticker] = true
		entries = append(entries, Entry{
			Ticker:       r.Position.Ticker,
			Name:         r.Position.AssetName,
			DayChangePct: r.Quote.DayChangePct,
		})
	}
	return entries
}

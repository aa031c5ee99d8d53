package valuation

import (
	"encoding/json"
	"testing"

	"github.com/newthinker/folio/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(price float64) core.Quote {
	return core.Quote{CurrentPrice: core.Known(price)}
}

func TestValue_BasicScenario(t *testing.T) {
	p := Value(
		[]core.Position{{Ticker: "X", Units: 10, AvgPrice: 100}},
		map[string]core.Quote{"X": priced(120)},
	)
	require.Len(t, p.Rows, 1)
	row := p.Rows[0]

	assert.Equal(t, 1000.0, row.Invested)
	assert.Equal(t, 1200.0, row.MarketValue)
	assert.Equal(t, 200.0, row.PnLAbs)

	pct, ok := row.PnLPct.Get()
	require.True(t, ok)
	assert.InDelta(t, 20.0, pct, 1e-9)
}

func TestValue_ZeroAvgPrice(t *testing.T) {
	p := Value(
		[]core.Position{{Ticker: "Y", Units: 5, AvgPrice: 0}},
		map[string]core.Quote{"Y": priced(50)},
	)
	row := p.Rows[0]

	assert.Equal(t, 0.0, row.Invested)
	assert.Equal(t, 250.0, row.MarketValue)
	assert.False(t, row.PnLPct.IsKnown(), "pnl_pct must be unavailable, not 0 or infinite")
}

func TestValue_PnLPctUnavailableWheneverAvgPriceZero(t *testing.T) {
	for _, units := range []float64{0, 1, 7.5, 1e6} {
		for _, price := range []float64{0, 0.01, 100} {
			p := Value(
				[]core.Position{{Ticker: "Z", Units: units, AvgPrice: 0}},
				map[string]core.Quote{"Z": priced(price)},
			)
			assert.False(t, p.Rows[0].PnLPct.IsKnown(), "units=%v price=%v", units, price)
		}
	}
}

func TestValue_Weights(t *testing.T) {
	p := Value(
		[]core.Position{
			{Ticker: "A", Units: 7, AvgPrice: 50},
			{Ticker: "B", Units: 3, AvgPrice: 50},
		},
		map[string]core.Quote{"A": priced(100), "B": priced(100)},
	)

	wa, ok := p.Rows[0].WeightPct.Get()
	require.True(t, ok)
	wb, ok := p.Rows[1].WeightPct.Get()
	require.True(t, ok)

	assert.InDelta(t, 70.0, wa, 1e-9)
	assert.InDelta(t, 30.0, wb, 1e-9)
	assert.InDelta(t, 100.0, WeightSum(p.Rows), 1e-6)
}

func TestValue_WeightsSumTo100(t *testing.T) {
	positions := []core.Position{
		{Ticker: "A", Units: 3.3, AvgPrice: 10},
		{Ticker: "B", Units: 1.7, AvgPrice: 10},
		{Ticker: "C", Units: 11, AvgPrice: 10},
		{Ticker: "D", Units: 0.01, AvgPrice: 10},
		{Ticker: "E", Units: 4, AvgPrice: 10},
	}
	quotes := map[string]core.Quote{
		"A": priced(17.13), "B": priced(1234.5), "C": priced(0.333),
		"D": priced(99999), "E": {},
	}

	p := Value(positions, quotes)
	assert.InDelta(t, 100.0, WeightSum(p.Rows), 1e-6)
	assert.False(t, p.Rows[4].WeightPct.IsKnown())
}

func TestValue_ZeroTotalMarketValue(t *testing.T) {
	p := Value(
		[]core.Position{
			{Ticker: "A", Units: 0, AvgPrice: 10},
			{Ticker: "B", Units: 5, AvgPrice: 10},
		},
		map[string]core.Quote{"A": priced(100)},
	)

	for _, row := range p.Rows {
		assert.False(t, row.WeightPct.IsKnown(), "ticker %s", row.Position.Ticker)
	}
}

func TestValue_AbsentQuote(t *testing.T) {
	p := Value(
		[]core.Position{{Ticker: "GONE", Units: 10, AvgPrice: 100}},
		map[string]core.Quote{"GONE": {}},
	)
	row := p.Rows[0]

	assert.False(t, row.PriceKnown)
	assert.Equal(t, 0.0, row.MarketValue)
	assert.Equal(t, 1000.0, row.Invested)

	// pnl_pct is computed from invested alone.
	pct, ok := row.PnLPct.Get()
	require.True(t, ok)
	assert.InDelta(t, -100.0, pct, 1e-9)

	// Renderers still see N/A for price-derived cells.
	assert.False(t, row.DisplayMarketValue().IsKnown())
	assert.False(t, row.DisplayPnLAbs().IsKnown())
	assert.False(t, row.DisplayPnLPct().IsKnown())
	assert.Equal(t, 1, p.Totals.Unpriced)
}

func TestValue_MissingQuoteEntry(t *testing.T) {
	p := Value([]core.Position{{Ticker: "NOQUOTE", Units: 1, AvgPrice: 1}}, nil)
	assert.False(t, p.Rows[0].PriceKnown)
	assert.Equal(t, 0.0, p.Rows[0].MarketValue)
}

func TestValue_NegativeInputsPropagate(t *testing.T) {
	p := Value(
		[]core.Position{{Ticker: "S", Units: -2, AvgPrice: 10}},
		map[string]core.Quote{"S": priced(15)},
	)
	row := p.Rows[0]

	assert.Equal(t, -20.0, row.Invested)
	assert.Equal(t, -30.0, row.MarketValue)
	assert.Equal(t, -10.0, row.PnLAbs)
	assert.False(t, row.PnLPct.IsKnown())
}

func TestValue_Totals(t *testing.T) {
	p := Value(
		[]core.Position{
			{Ticker: "A", Units: 10, AvgPrice: 100},
			{Ticker: "B", Units: 5, AvgPrice: 20},
			{Ticker: "C", Units: 1, AvgPrice: 50},
		},
		map[string]core.Quote{"A": priced(120), "B": priced(10)},
	)

	assert.Equal(t, 1150.0, p.Totals.Invested)
	assert.Equal(t, 1100.0, p.Totals.PricedInvested)
	assert.Equal(t, 1250.0, p.Totals.MarketValue)
	assert.Equal(t, core.Known(150), p.Totals.PnLAbs)
	pct, ok := p.Totals.PnLPct.Get()
	require.True(t, ok)
	assert.InDelta(t, 150.0/1100.0*100, pct, 1e-9)
	assert.Equal(t, 2, p.Totals.Priced)
	assert.Equal(t, 1, p.Totals.Unpriced)
}

func TestValue_TotalsSkipUnpricedRows(t *testing.T) {
	p := Value(
		[]core.Position{
			{Ticker: "X", Units: 10, AvgPrice: 100},
			{Ticker: "Y", Units: 10, AvgPrice: 100},
		},
		map[string]core.Quote{"X": priced(120)},
	)

	assert.Equal(t, 2000.0, p.Totals.Invested)
	assert.Equal(t, core.Known(200), p.Totals.PnLAbs)
	pct, ok := p.Totals.PnLPct.Get()
	require.True(t, ok)
	assert.InDelta(t, 20.0, pct, 1e-9)
}

func TestValue_TotalsAllUnpriced(t *testing.T) {
	p := Value(
		[]core.Position{{Ticker: "Y", Units: 10, AvgPrice: 100}},
		nil,
	)

	assert.Equal(t, 1000.0, p.Totals.Invested)
	assert.False(t, p.Totals.PnLAbs.IsKnown())
	assert.False(t, p.Totals.PnLPct.IsKnown())
}

func TestRow_MarshalJSON(t *testing.T) {
	p := Value(
		[]core.Position{
			{Ticker: "X", Units: 10, AvgPrice: 100},
			{Ticker: "Y", Units: 10, AvgPrice: 100},
		},
		map[string]core.Quote{"X": priced(120)},
	)

	data, err := json.Marshal(p.Rows[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"market_value":1200`)
	assert.Contains(t, string(data), `"pnl_abs":200`)
	assert.Contains(t, string(data), `"pnl_pct":20`)

	data, err = json.Marshal(p.Rows[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"invested":1000`)
	assert.Contains(t, string(data), `"market_value":null`)
	assert.Contains(t, string(data), `"pnl_abs":null`)
	assert.Contains(t, string(data), `"pnl_pct":null`)
	assert.Contains(t, string(data), `"price_known":false`)
}

func TestValue_Empty(t *testing.T) {
	p := Value(nil, nil)
	assert.Empty(t, p.Rows)
	assert.False(t, p.Totals.PnLPct.IsKnown())
}

func TestSortByMarketValue_StableTies(t *testing.T) {
	p := Value(
		[]core.Position{
			{Ticker: "A", Units: 1},
			{Ticker: "B", Units: 3},
			{Ticker: "C", Units: 1},
			{Ticker: "D", Units: 2},
			{Ticker: "E", Units: 1},
		},
		map[string]core.Quote{
			"A": priced(100), "B": priced(100), "C": priced(100), "D": priced(100), "E": priced(100),
		},
	)

	sorted := SortByMarketValue(p.Rows)
	var got []string
	for _, r := range sorted {
		got = append(got, r.Position.Ticker)
	}
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, got)

	// Input is left untouched and the sort is reproducible.
	assert.Equal(t, "A", p.Rows[0].Position.Ticker)
	assert.Equal(t, sorted, SortByMarketValue(p.Rows))
}

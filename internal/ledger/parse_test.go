package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/newthinker/folio/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	csv := `asset_name,ticker,category,units,avg_price,thesis,sector,country
Apple,AAPL,Stock,10,150.5,Services moat,Tech,US
Bitcoin,bitcoin,Crypto,0.5,"30,000",,Crypto,
Fixed Deposit,,other,abc,,,Cash,IN
`
	positions, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, positions, 3)

	assert.Equal(t, core.Position{
		AssetName: "Apple",
		Ticker:    "AAPL",
		Category:  core.CategoryEquity,
		Country:   "US",
		Units:     10,
		AvgPrice:  150.5,
		Thesis:    "Services moat",
		Sector:    "Tech",
	}, positions[0])

	assert.Equal(t, core.CategoryCrypto, positions[1].Category)
	assert.Equal(t, 30000.0, positions[1].AvgPrice)

	// Bad numerics coerce to zero; the row is kept.
	assert.Equal(t, "Fixed Deposit", positions[2].AssetName)
	assert.Equal(t, 0.0, positions[2].Units)
	assert.Equal(t, 0.0, positions[2].AvgPrice)
	assert.Equal(t, "", positions[2].Ticker)
}

func TestParse_PreservesRowOrder(t *testing.T) {
	csv := "asset_name,ticker,category,units,avg_price\nC,C,equity,1,1\nA,A,equity,1,1\nB,B,equity,1,1\n"
	positions, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)

	var got []string
	for _, p := range positions {
		got = append(got, p.Ticker)
	}
	assert.Equal(t, []string{"C", "A", "B"}, got)
}

func TestParse_OptionalColumnsDefaultEmpty(t *testing.T) {
	csv := "Asset_Name, Ticker ,CATEGORY,units,avg_price\nApple,AAPL,equity,1,2\n"
	positions, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "", positions[0].Thesis)
	assert.Equal(t, "", positions[0].Sector)
	assert.Equal(t, "", positions[0].Country)
}

func TestParse_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{
			name:    "one missing",
			input:   "asset_name,ticker,category,units\nA,A,equity,1\n",
			missing: []string{"avg_price"},
		},
		{
			name:    "several missing in canonical order",
			input:   "units,asset_name,sector\n1,A,Tech\n",
			missing: []string{"ticker", "category", "avg_price"},
		},
		{
			name:    "empty input",
			input:   "",
			missing: RequiredColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrSchema))

			var schemaErr *core.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tt.missing, schemaErr.Missing)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	positions, err := Parse(strings.NewReader("asset_name,ticker,category,units,avg_price\n,,,,\n"))
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{" 1,234.50 ", 1234.5},
		{"", 0},
		{"n/a", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-3", -3},
	}
	for _, tt := range tests {
		if got := parseNumber(tt.in); got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse_RaggedRows(t *testing.T) {
	csv := "asset_name,ticker,category,units,avg_price,thesis\nApple,AAPL,equity,1\nMSFT,MSFT,equity,2,3,cloud,extra\n"
	positions, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, 0.0, positions[0].AvgPrice)
	assert.Equal(t, "cloud", positions[1].Thesis)
}

package format

import (
	"strings"
	"testing"

	"github.com/newthinker/folio/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		name     string
		in       core.Float
		currency string
		want     string
	}{
		{"usd", core.Known(1234.5), "USD", "$1,234.50"},
		{"default currency", core.Known(10), "", "$10.00"},
		{"negative", core.Known(-50.25), "USD", "-$50.25"},
		{"rounds", core.Known(0.005), "USD", "$0.01"},
		{"na", core.NA, "USD", NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(tt.in, tt.currency))
		})
	}
}

func TestSignedMoney(t *testing.T) {
	assert.Equal(t, "+$5.00", SignedMoney(core.Known(5), "USD"))
	assert.Equal(t, "-$5.00", SignedMoney(core.Known(-5), "USD"))
	assert.Equal(t, NA, SignedMoney(core.NA, "USD"))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   core.Float
		want string
	}{
		{core.Known(4.2), "+4.20%"},
		{core.Known(-1.234), "-1.23%"},
		{core.Known(0), "0.00%"},
		{core.Known(-0.001), "0.00%"},
		{core.Known(100), "+100.00%"},
		{core.NA, NA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.in))
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   core.Float
		want string
	}{
		{core.Known(22000), "22,000.00"},
		{core.Known(1234567.891), "1,234,567.89"},
		{core.Known(-1234.5), "-1,234.50"},
		{core.Known(12.3), "12.30"},
		{core.Known(0), "0.00"},
		{core.NA, NA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in))
	}
}

func TestDirectionAndTone(t *testing.T) {
	assert.Equal(t, "▲", Direction(core.Known(1)))
	assert.Equal(t, "▼", Direction(core.Known(-1)))
	assert.Equal(t, "•", Direction(core.Known(0)))
	assert.Equal(t, "", Direction(core.NA))

	assert.Equal(t, "up", Tone(core.Known(1)))
	assert.Equal(t, "na", Tone(core.NA))
}

func TestCurrencyFor(t *testing.T) {
	assert.Equal(t, "INR", CurrencyFor("india"))
	assert.Equal(t, "INR", CurrencyFor(" IN "))
	assert.Equal(t, "USD", CurrencyFor("US"))
	assert.Equal(t, "USD", CurrencyFor(""))
}

func TestMarkdown(t *testing.T) {
	html := string(Markdown("**Action:** HOLD\n\n- one\n- two"))
	assert.Contains(t, html, "<strong>Action:</strong> HOLD")
	assert.Contains(t, html, "<li>one</li>")

	escaped := string(Markdown("<script>alert(1)</script>"))
	assert.NotContains(t, escaped, "<script>")
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Title\n\nSome **bold** text.", 80, "notty")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Title"))
	assert.True(t, strings.Contains(out, "bold"))
}

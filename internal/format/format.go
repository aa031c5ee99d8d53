// Package format renders values for people. It is the only place an
// unavailable value becomes the text "N/A".
package format

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/newthinker/folio/internal/core"
	"github.com/shopspring/decimal"
)

// NA is shown for any unavailable value.
const NA = "N/A"

// DefaultCurrency is used when a position has no known currency.
const DefaultCurrency = money.USD

// CurrencyFor maps a ledger country code to a display currency.
func CurrencyFor(country string) string {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "IN", "IND", "INDIA":
		return money.INR
	case "HK", "HKG":
		return money.HKD
	case "CN", "CHN":
		return money.CNY
	case "GB", "UK":
		return money.GBP
	default:
		return DefaultCurrency
	}
}

// Money formats an amount in currency, e.g. "$1,234.56".
func Money(f core.Float, currency string) string {
	v, ok := f.Get()
	if !ok {
		return NA
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	// money.New never returns a nil currency; unknown codes get a generic one.
	cur := money.New(0, currency).Currency()
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedMoney is Money with a leading "+" for gains.
func SignedMoney(f core.Float, currency string) string {
	s := Money(f, currency)
	if v, ok := f.Get(); ok && v > 0 {
		return "+" + s
	}
	return s
}

// Percent formats a percentage with sign and two decimals, e.g. "+4.20%".
func Percent(f core.Float) string {
	v, ok := f.Get()
	if !ok {
		return NA
	}
	d := decimal.NewFromFloat(v).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	if d.IsZero() {
		return "0.00%"
	}
	return s
}

// Number formats a value with two decimals and thousands separators.
func Number(f core.Float) string {
	v, ok := f.Get()
	if !ok {
		return NA
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	out := sb.String() + "." + frac
	if neg && out != "0.00" {
		out = "-" + out
	}
	return out
}

// Direction returns an arrow for the sign of a change, or "" when unknown.
func Direction(f core.Float) string {
	v, ok := f.Get()
	switch {
	case !ok:
		return ""
	case v > 0:
		return "▲"
	case v < 0:
		return "▼"
	default:
		return "•"
	}
}

// Tone is the CSS class for the sign of a change.
func Tone(f core.Float) string {
	v, ok := f.Get()
	switch {
	case !ok:
		return "na"
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return "flat"
	}
}

package app

import (
	"fmt"
	"strings"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/format"
	"github.com/newthinker/folio/internal/ledger"
)

// View selects which part of the ledger a page shows.
type View string

const (
	ViewAll   View = "all"
	ViewUS    View = "us"
	ViewIndia View = "india"
)

// Views lists every view in menu order.
var Views = []View{ViewAll, ViewUS, ViewIndia}

// ParseView maps a query value to a view. Empty means ViewAll.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ViewAll, nil
	case "us", "usa":
		return ViewUS, nil
	case "in", "ind", "india":
		return ViewIndia, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Countries returns the ledger country codes the view keeps, nil for all.
func (v View) Countries() []string {
	switch v {
	case ViewUS:
		return []string{"US", "USA"}
	case ViewIndia:
		return []string{"IN", "IND", "INDIA"}
	default:
		return nil
	}
}

// Currency is the display currency of the view.
func (v View) Currency() string {
	if v == ViewIndia {
		return format.CurrencyFor("IN")
	}
	return format.DefaultCurrency
}

// Title is the heading shown for the view.
func (v View) Title() string {
	switch v {
	case ViewUS:
		return "US Stocks"
	case ViewIndia:
		return "India"
	default:
		return "All Holdings"
	}
}

// apply applies the view to a ledger. Country views only make sense
// for quoted positions, so they also drop rows without a ticker.
func (v View) apply(positions []core.Position) []core.Position {
	codes := v.Countries()
	if len(codes) == 0 {
		return positions
	}
	return ledger.WithTicker(ledger.FilterCountry(positions, codes...))
}

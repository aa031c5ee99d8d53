package core

import "strings"

// Category determines which quote source prices a position.
type Category string

const (
	CategoryEquity Category = "equity"
	CategoryCrypto Category = "crypto"
	CategoryOther  Category = "other"
)

// ParseCategory normalizes a free-text ledger category.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equity", "stock", "stocks", "etf", "index", "fund":
		return CategoryEquity
	case "crypto", "cryptocurrency":
		return CategoryCrypto
	default:
		return CategoryOther
	}
}

// Position is one row of the ledger.
type Position struct {
	AssetName string   `json:"asset_name"`
	Ticker    string   `json:"ticker"`
	Category  Category `json:"category"`
	Country   string   `json:"country"`
	Units     float64  `json:"units"`
	AvgPrice  float64  `json:"avg_price"`
	Thesis    string   `json:"thesis"`
	Sector    string   `json:"sector"`
}

// Quote is a point-in-time market snapshot for one ticker.
// Every field may be unavailable.
type Quote struct {
	CurrentPrice Float `json:"current_price"`
	High52w      Float `json:"high_52w"`
	Low52w       Float `json:"low_52w"`
	PrevClose    Float `json:"prev_close"`
	DayChangePct Float `json:"day_change_pct"`
}

// Absent reports whether every field is unavailable.
func (q Quote) Absent() bool {
	return !q.CurrentPrice.IsKnown() && !q.High52w.IsKnown() && !q.Low52w.IsKnown() &&
		!q.PrevClose.IsKnown() && !q.DayChangePct.IsKnown()
}

// Action is the recommendation attached to a narrative.
type Action string

const (
	ActionAccumulate Action = "ACCUMULATE"
	ActionHold       Action = "HOLD"
	ActionTrim       Action = "TRIM"
	ActionExit       Action = "EXIT"
)

// Actions lists the closed action set in display order.
var Actions = []Action{ActionAccumulate, ActionHold, ActionTrim, ActionExit}

// ParseAction maps a tag to the closed set. The BUY/HOLD/AVOID variant
// is accepted: BUY maps to ACCUMULATE, SELL to TRIM and AVOID to EXIT.
func ParseAction(s string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACCUMULATE", "BUY", "ADD":
		return ActionAccumulate, true
	case "HOLD":
		return ActionHold, true
	case "TRIM", "SELL", "REDUCE":
		return ActionTrim, true
	case "EXIT", "AVOID":
		return ActionExit, true
	default:
		return "", false
	}
}

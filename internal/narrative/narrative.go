// Package narrative produces per-position commentary and an action tag
// from an LLM, and runs it over a whole ledger at a polite pace.
package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/valuation"
)

// PlaceholderText replaces the commentary of a failed narrative.
const PlaceholderText = "Narrative unavailable"

// Input is the snapshot of one position sent to the model.
type Input struct {
	AssetName    string     `json:"asset_name"`
	Ticker       string     `json:"ticker"`
	Units        float64    `json:"units"`
	AvgPrice     float64    `json:"avg_price"`
	CurrentPrice core.Float `json:"current_price"`
	High52w      core.Float `json:"high_52w"`
	Low52w       core.Float `json:"low_52w"`
	Thesis       string     `json:"thesis"`

	// News holds recent headlines for the ticker, if any.
	News []string `json:"news,omitempty"`
}

// FromRow builds an input from a valued row.
func FromRow(r valuation.Row) Input {
	return Input{
		AssetName:    r.Position.AssetName,
		Ticker:       r.Position.Ticker,
		Units:        r.Position.Units,
		AvgPrice:     r.Position.AvgPrice,
		CurrentPrice: r.Quote.CurrentPrice,
		High52w:      r.Quote.High52w,
		Low52w:       r.Quote.Low52w,
		Thesis:       r.Position.Thesis,
	}
}

const namePrefix = "name:"

// ID identifies the position an input belongs to: the upper-cased ticker,
// or the asset name for rows without one.
func (in Input) ID() string {
	if t := strings.ToUpper(strings.TrimSpace(in.Ticker)); t != "" {
		return t
	}
	return namePrefix + strings.ToLower(strings.TrimSpace(in.AssetName))
}

// Key is the normalized tuple of every field, used to memoise results.
func (in Input) Key() string {
	parts := []string{
		in.ID(),
		strings.TrimSpace(in.AssetName),
		strconv.FormatFloat(in.Units, 'g', -1, 64),
		strconv.FormatFloat(in.AvgPrice, 'g', -1, 64),
		keyFloat(in.CurrentPrice),
		keyFloat(in.High52w),
		keyFloat(in.Low52w),
		strings.TrimSpace(in.Thesis),
		strings.Join(in.News, "\n"),
	}
	return strings.Join(parts, "\x1f")
}

func keyFloat(f core.Float) string {
	if v, ok := f.Get(); ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "NA"
}

// Result is a parsed narrative.
type Result struct {
	Commentary string      `json:"commentary"`
	Action     core.Action `json:"action"`
	Signals    []string    `json:"signals_to_monitor"`
	Markdown   string      `json:"markdown"`
	Raw        string      `json:"raw,omitempty"`
}

// Placeholder is the result shown for a position whose narrative failed.
func Placeholder() Result {
	return Result{
		Commentary: PlaceholderText,
		Signals:    []string{},
		Markdown:   "_" + PlaceholderText + "_",
	}
}

// render builds the markdown shown to users.
func (r Result) render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Action:** %s\n\n", r.Action)
	if r.Commentary != "" {
		sb.WriteString(r.Commentary)
		sb.WriteString("\n\n")
	}
	if len(r.Signals) > 0 {
		sb.WriteString("**Signals to monitor**\n\n")
		for _, s := range r.Signals {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	return strings.TrimSpace(sb.String())
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/format"
	"github.com/newthinker/folio/internal/macro"
	"github.com/newthinker/folio/internal/movers"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/newthinker/folio/internal/valuation"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func printPortfolio(w io.Writer, p *app.PortfolioView) error {
	fmt.Fprintf(w, "=== %s (%s) ===\n\n", p.View.Title(), p.Currency)
	if len(p.Rows) == 0 {
		fmt.Fprintln(w, "No positions in this view.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ASSET\tTICKER\tUNITS\tAVG COST\tINVESTED\tPRICE\tDAY\tVALUE\tP&L\tP&L %\tWEIGHT\t")
	for _, r := range valuation.SortByMarketValue(p.Rows) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Position.AssetName,
			r.Position.Ticker,
			format.Number(core.Known(r.Position.Units)),
			format.Money(core.Known(r.Position.AvgPrice), p.Currency),
			format.Money(core.Known(r.Invested), p.Currency),
			format.Money(r.Quote.CurrentPrice, p.Currency),
			format.Percent(r.Quote.DayChangePct),
			format.Money(r.DisplayMarketValue(), p.Currency),
			format.SignedMoney(r.DisplayPnLAbs(), p.Currency),
			format.Percent(r.DisplayPnLPct()),
			format.Percent(r.WeightPct),
		)
	}
	t := p.Totals
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t\t\t%s\t%s\t%s\t\t\n",
		format.Money(core.Known(t.Invested), p.Currency),
		format.Money(core.Known(t.MarketValue), p.Currency),
		format.SignedMoney(t.PnLAbs, p.Currency),
		format.Percent(t.PnLPct),
	)
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.Unpriced > 0 {
		fmt.Fprintf(w, "\n%d position(s) without a current price are left out of P&L.\n", t.Unpriced)
	}
	return nil
}

func printMovers(w io.Writer, m *app.MoversView) error {
	fmt.Fprintf(w, "=== Top Movers: %s ===\n\n", m.View.Title())
	if !m.Result.HasData {
		fmt.Fprintln(w, "No day-change data available.")
		return nil
	}
	tw := newTable(w)
	section := func(title string, ms []movers.Mover) {
		fmt.Fprintf(tw, "%s\t\t\t\n", title)
		if len(ms) == 0 {
			fmt.Fprintln(tw, "  none\t\t\t")
		}
		for _, mv := range ms {
			c := core.Known(mv.DayChangePct)
			fmt.Fprintf(tw, "  %s\t%s\t%s %s\t\n", mv.Ticker, mv.Name, format.Direction(c), format.Percent(c))
		}
	}
	section("GAINERS", m.Result.Gainers)
	section("LOSERS", m.Result.Losers)
	return tw.Flush()
}

// narrativeMarkdown joins every item into one markdown document.
func narrativeMarkdown(items []narrative.Item) string {
	var sb strings.Builder
	for _, it := range items {
		name := it.AssetName
		if it.Ticker != "" {
			name += " (" + it.Ticker + ")"
		}
		fmt.Fprintf(&sb, "## %s\n\n", name)
		if it.Outcome == narrative.OutcomeFailed || it.Outcome == narrative.OutcomePending {
			fmt.Fprintf(&sb, "_%s_\n\n", it.Outcome)
		}
		sb.WriteString(it.Result.Markdown)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func printReport(w io.Writer, r *narrative.Report, width int, style string) error {
	if len(r.Items) == 0 {
		fmt.Fprintln(w, "No quoted positions to narrate.")
		return nil
	}
	out, err := format.Terminal(narrativeMarkdown(r.Items), width, style)
	if err != nil {
		return err
	}
	fmt.Fprint(w, out)
	fmt.Fprintf(w, "%d generated, %d reused, %d failed, %d not reached\n",
		r.Succeeded, r.Skipped, r.Failed, r.Pending)
	return nil
}

func printMacro(w io.Writer, readings []macro.Reading) error {
	fmt.Fprintln(w, "=== Macro ===")
	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "INDICATOR\tTICKER\tPRICE\tDAY\t")
	for _, r := range readings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t\n",
			r.Name, r.Ticker, format.Number(r.Price), format.Direction(r.DayChangePct), format.Percent(r.DayChangePct))
	}
	return tw.Flush()
}

func printNews(w io.Writer, v *app.NewsView, width int, style string) error {
	fmt.Fprintf(w, "=== News: %s (%d of %d) ===\n\n", v.View.Title(), len(v.Items), v.Total)
	if b := v.Brief; b != nil {
		var sb strings.Builder
		sb.WriteString("### Brief\n\n" + b.Summary + "\n\n")
		for _, s := range b.Impactful {
			sb.WriteString("- " + s + "\n")
		}
		if len(b.Watch) > 0 {
			sb.WriteString("\n**Watch**\n\n")
			for _, s := range b.Watch {
				sb.WriteString("- " + s + "\n")
			}
		}
		out, err := format.Terminal(sb.String(), width, style)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
	}

	if len(v.Items) == 0 {
		fmt.Fprintln(w, "No headlines for your holdings.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTICKER\tCATEGORY\tHEADLINE\tSOURCE")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.PublishedAt.Local().Format("Jan 02 15:04"), it.Ticker, it.Category, it.Headline, it.Source)
	}
	return tw.Flush()
}

package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/macro"
	"github.com/newthinker/folio/internal/movers"
	"github.com/newthinker/folio/internal/narrative"
	"github.com/newthinker/folio/internal/news"
	"github.com/newthinker/folio/internal/valuation"
)

// Page is the data every template shares.
type Page struct {
	Title    string
	Active   string
	View     app.View
	Views    []app.View
	Currency string
	Now      time.Time
}

func newPage(title, active string, view app.View) Page {
	return Page{
		Title:    title,
		Active:   active,
		View:     view,
		Views:    app.Views,
		Currency: view.Currency(),
		Now:      time.Now(),
	}
}

// PositionRow is one table row with every number ready for formatting.
type PositionRow struct {
	Name         string
	Ticker       string
	Country      string
	Units        core.Float
	AvgPrice     core.Float
	Invested     core.Float
	Price        core.Float
	MarketValue  core.Float
	PnLAbs       core.Float
	PnLPct       core.Float
	Weight       core.Float
	DayChangePct core.Float
	High52w      core.Float
	Low52w       core.Float
}

func positionRows(rows []valuation.Row) []PositionRow {
	out := make([]PositionRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, PositionRow{
			Name:         r.Position.AssetName,
			Ticker:       r.Position.Ticker,
			Country:      r.Position.Country,
			Units:        core.Known(r.Position.Units),
			AvgPrice:     core.Known(r.Position.AvgPrice),
			Invested:     core.Known(r.Invested),
			Price:        r.Quote.CurrentPrice,
			MarketValue:  r.DisplayMarketValue(),
			PnLAbs:       r.DisplayPnLAbs(),
			PnLPct:       r.DisplayPnLPct(),
			Weight:       r.WeightPct,
			DayChangePct: r.Quote.DayChangePct,
			High52w:      r.Quote.High52w,
			Low52w:       r.Quote.Low52w,
		})
	}
	return out
}

// TotalsRow is the portfolio footer.
type TotalsRow struct {
	Invested    core.Float
	MarketValue core.Float
	PnLAbs      core.Float
	PnLPct      core.Float
	Priced      int
	Unpriced    int
}

func totalsRow(t valuation.Totals) TotalsRow {
	return TotalsRow{
		Invested:    core.Known(t.Invested),
		MarketValue: core.Known(t.MarketValue),
		PnLAbs:      t.PnLAbs,
		PnLPct:      t.PnLPct,
		Priced:      t.Priced,
		Unpriced:    t.Unpriced,
	}
}

// MoverRow is a gainer or loser.
type MoverRow struct {
	Name         string
	Ticker       string
	DayChangePct core.Float
}

func moverRows(ms []movers.Mover) []MoverRow {
	out := make([]MoverRow, 0, len(ms))
	for _, m := range ms {
		out = append(out, MoverRow{Name: m.Name, Ticker: m.Ticker, DayChangePct: core.Known(m.DayChangePct)})
	}
	return out
}

// MoversData holds the movers section.
type MoversData struct {
	Gainers []MoverRow
	Losers  []MoverRow
	HasData bool
}

func moversData(r movers.Result) MoversData {
	return MoversData{Gainers: moverRows(r.Gainers), Losers: moverRows(r.Losers), HasData: r.HasData}
}

// DashboardData holds data for the dashboard template
type DashboardData struct {
	Page
	Totals    TotalsRow
	Positions int
	Movers    MoversData
	Macro     []macro.Reading
}

// PortfolioData holds data for the portfolio template.
type PortfolioData struct {
	Page
	Rows   []PositionRow
	Totals TotalsRow
}

// MoversPageData holds data for the movers template.
type MoversPageData struct {
	Page
	Movers MoversData
}

// NarrativesData holds data for the narratives template.
type NarrativesData struct {
	Page
	Items  []narrative.Item
	Report *narrative.Report
	Notice string
}

// NewsData holds data for the news template.
type NewsData struct {
	Page
	Items      []news.Item
	Total      int
	Brief      *news.Brief
	Categories []news.Category
	Selected   map[news.Category]bool
}

// MacroData holds data for the macro template.
type MacroData struct {
	Page
	Readings []macro.Reading
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request, title, active string) (app.View, bool) {
	view, err := app.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, newPage(title, active, app.ViewAll), core.WrapError(core.ErrBadRequest, err))
		return "", false
	}
	return view, true
}

// Dashboard renders the overview: totals, movers and the macro board.
// Movers and macro are optional; their failures leave the section empty.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r, "Dashboard", "dashboard")
	if !ok {
		return
	}
	page := newPage("Dashboard", "dashboard", view)

	p, err := h.app.Portfolio(r.Context(), view)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}

	data := DashboardData{
		Page:      page,
		Totals:    totalsRow(p.Totals),
		Positions: len(p.Rows),
	}
	if m, err := h.app.Movers(r.Context(), view, movers.DefaultTopN); err == nil {
		data.Movers = moversData(m.Result)
	}
	if readings, err := h.app.Macro(r.Context()); err == nil {
		data.Macro = readings
	}

	h.render(w, http.StatusOK, "dashboard.html", data)
}

// Portfolio renders the holdings table.
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r, "Portfolio", "portfolio")
	if !ok {
		return
	}
	page := newPage(view.Title(), "portfolio", view)

	p, err := h.app.Portfolio(r.Context(), view)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}

	h.render(w, http.StatusOK, "portfolio.html", PortfolioData{
		Page:   page,
		Rows:   positionRows(valuation.SortByMarketValue(p.Rows)),
		Totals: totalsRow(p.Totals),
	})
}

// Movers renders the top gainers and losers.
func (h *Handler) Movers(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r, "Movers", "movers")
	if !ok {
		return
	}
	page := newPage("Top Movers", "movers", view)

	m, err := h.app.Movers(r.Context(), view, movers.DefaultTopN)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	h.render(w, http.StatusOK, "movers.html", MoversPageData{Page: page, Movers: moversData(m.Result)})
}

// Narratives renders the stored narratives.
func (h *Handler) Narratives(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r, "Narratives", "narratives")
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "narratives.html", NarrativesData{
		Page:   newPage("Narratives", "narratives", view),
		Items:  h.app.NarrativeItems(),
		Notice: r.URL.Query().Get("notice"),
	})
}

// RunNarratives runs a batch and shows its report.
func (h *Handler) RunNarratives(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r, "Narratives", "narratives")
	if !ok {
		return
	}
	page := newPage("Narratives", "narratives", view)

	opts := app.NarrativeOptions{Refresh: r.FormValue("refresh") != ""}
	report, err := h.app.Narratives(r.Context(), view, opts)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	h.render(w, http.StatusOK, "narratives.html", NarrativesData{
		Page:   page,
		Items:  report.Items,
		Report: report,
	})
}

// RetryNarrative regenerates one narrative and returns to the list.
func (h *Handler) RetryNarrative(w http.ResponseWriter, r *http.Request, ticker string) {
	notice := "Narrative for " + ticker + " regenerated"
	if _, err := h.app.RetryNarrative(r.Context(), ticker); err != nil {
		notice = "Narrative for " + ticker + " still unavailable"
		if errors.Is(err, core.ErrNotFound) {
			notice = "No narrative run includes " + ticker
		}
	}
	http.Redirect(w, r, "/narratives?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

// News renders the headline feed with an optional brief.
func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r, "News", "news")
	if !ok {
		return
	}
	page := newPage("News", "news", view)

	filter := app.NewsFilter{Max: h.newsMax, Brief: r.URL.Query().Get("brief") != ""}
	selected := make(map[news.Category]bool)
	for _, raw := range r.URL.Query()["category"] {
		for _, part := range strings.Split(raw, ",") {
			if c, ok := news.ParseCategory(part); ok && !selected[c] {
				selected[c] = true
				filter.Categories = append(filter.Categories, c)
			}
		}
	}

	v, err := h.app.News(r.Context(), view, filter)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	h.render(w, http.StatusOK, "news.html", NewsData{
		Page:       page,
		Items:      v.Items,
		Total:      v.Total,
		Brief:      v.Brief,
		Categories: news.Categories,
		Selected:   selected,
	})
}

// Macro renders the indicator board.
func (h *Handler) Macro(w http.ResponseWriter, r *http.Request) {
	page := newPage("Macro", "macro", app.ViewAll)
	readings, err := h.app.Macro(r.Context())
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	h.render(w, http.StatusOK, "macro.html", MacroData{Page: page, Readings: readings})
}

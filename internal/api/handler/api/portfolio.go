package api

import (
	"context"
	"net/http"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
)

// PortfolioApp defines the interface needed from app.App.
type PortfolioApp interface {
	Portfolio(ctx context.Context, view app.View) (*app.PortfolioView, error)
	Movers(ctx context.Context, view app.View, topN int) (*app.MoversView, error)
}

// PortfolioHandler serves the valued ledger and its movers.
type PortfolioHandler struct {
	app PortfolioApp
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(app PortfolioApp) *PortfolioHandler {
	return &PortfolioHandler{app: app}
}

// Get returns the valued portfolio for ?view=all|us|india.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := viewParam(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	p, err := h.app.Portfolio(r.Context(), view)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

// Movers returns the top gainers and losers, ?top=N.
func (h *PortfolioHandler) Movers(w http.ResponseWriter, r *http.Request) {
	view, err := viewParam(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	top, err := intParam(r, "top")
	if err != nil {
		response.Fail(w, err)
		return
	}

	m, err := h.app.Movers(r.Context(), view, top)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, m)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/news"
)

// NewsApp defines the interface needed from app.App.
type NewsApp interface {
	News(ctx context.Context, view app.View, filter app.NewsFilter) (*app.NewsView, error)
}

// NewsHandler serves the holdings headline feed.
type NewsHandler struct {
	app        NewsApp
	defaultMax int
}

// NewNewsHandler creates a new news handler. defaultMax caps the feed
// when the request has no ?max.
func NewNewsHandler(app NewsApp, defaultMax int) *NewsHandler {
	return &NewsHandler{app: app, defaultMax: defaultMax}
}

// List returns headlines filtered by ?category=a,b and ?max, with an LLM
// brief when ?brief=true.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := viewParam(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	filter, err := h.filter(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	v, err := h.app.News(r.Context(), view, filter)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}

func (h *NewsHandler) filter(r *http.Request) (app.NewsFilter, error) {
	limit, err := intParam(r, "max")
	if err != nil {
		return app.NewsFilter{}, err
	}
	if limit == 0 {
		limit = h.defaultMax
	}

	f := app.NewsFilter{Max: limit, Brief: boolParam(r, "brief")}
	for _, raw := range strings.Split(r.URL.Query().Get("category"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c, ok := news.ParseCategory(raw)
		if !ok {
			return app.NewsFilter{}, core.WrapError(core.ErrBadRequest, fmt.Errorf("unknown category %q", raw))
		}
		f.Categories = append(f.Categories, c)
	}
	return f, nil
}

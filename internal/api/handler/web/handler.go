// Package web renders the HTML pages from embedded templates.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/format"
	"github.com/newthinker/folio/internal/macro"
	"github.com/newthinker/folio/internal/narrative"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

// pages are the page templates, each parsed together with layout.html.
var pages = []string{
	"dashboard.html",
	"portfolio.html",
	"movers.html",
	"narratives.html",
	"news.html",
	"macro.html",
	"error.html",
}

// App is the part of app.App the pages read from.
type App interface {
	Portfolio(ctx context.Context, view app.View) (*app.PortfolioView, error)
	Movers(ctx context.Context, view app.View, topN int) (*app.MoversView, error)
	Narratives(ctx context.Context, view app.View, opts app.NarrativeOptions) (*narrative.Report, error)
	RetryNarrative(ctx context.Context, ticker string) (narrative.Item, error)
	NarrativeItems() []narrative.Item
	News(ctx context.Context, view app.View, filter app.NewsFilter) (*app.NewsView, error)
	Macro(ctx context.Context) ([]macro.Reading, error)
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds one template set per page: layout.html plus the page.
	pageTemplates map[string]*template.Template
	app           App
	logger        *zap.Logger
	newsMax       int
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for render failures.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithNewsMax caps the headlines shown on the news page.
func WithNewsMax(n int) Option {
	return func(h *Handler) { h.newsMax = n }
}

// NewHandler creates a web handler. Templates load from templatesDir when
// set, otherwise from the embedded copy.
func NewHandler(a App, templatesDir string, opts ...Option) (*Handler, error) {
	var fsys fs.FS
	if templatesDir != "" {
		fsys = os.DirFS(filepath.Clean(templatesDir))
	} else {
		fsys = TemplateFS()
	}
	return NewHandlerWithFS(a, fsys, opts...)
}

// NewHandlerWithFS creates a web handler using a custom filesystem.
func NewHandlerWithFS(a App, fsys fs.FS, opts ...Option) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template, len(pages))
	funcs := format.FuncMap()

	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	h := &Handler{
		pageTemplates: pageTemplates,
		app:           a,
		logger:        zap.NewNop(),
		newsMax:       20,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("render failed", zap.String("page", page), zap.Error(err))
	}
}

// ErrorData holds data for the error page.
type ErrorData struct {
	Page
	Code    string
	Message string
	Missing []string
}

// fail renders the error page for err with its API status code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, page Page, err error) {
	status := response.Status(err)
	data := ErrorData{Page: page, Code: "INTERNAL_ERROR", Message: err.Error()}

	var schemaErr *core.SchemaError
	var coreErr *core.Error
	switch {
	case errors.As(err, &schemaErr):
		data.Code = core.ErrSchema.Code
		data.Message = core.ErrSchema.Message
		data.Missing = schemaErr.Missing
	case errors.As(err, &coreErr):
		data.Code = coreErr.Code
		data.Message = coreErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.render(w, status, "error.html", data)
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return templateFS
	}
	return subFS
}

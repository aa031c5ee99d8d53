package api

import (
	"context"
	"net/http"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/macro"
)

// MacroApp defines the interface needed from app.App.
type MacroApp interface {
	Macro(ctx context.Context) ([]macro.Reading, error)
}

// MacroHandler serves the indicator board.
type MacroHandler struct {
	app MacroApp
}

// NewMacroHandler creates a new macro handler.
func NewMacroHandler(app MacroApp) *MacroHandler {
	return &MacroHandler{app: app}
}

// Get returns the latest reading of every indicator.
func (h *MacroHandler) Get(w http.ResponseWriter, r *http.Request) {
	readings, err := h.app.Macro(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"indicators": readings,
		"count":      len(readings),
	})
}

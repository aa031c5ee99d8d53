// Package api holds the JSON handlers mounted under /api/v1.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
)

func viewParam(r *http.Request) (app.View, error) {
	v, err := app.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		return "", core.WrapError(core.ErrBadRequest, err)
	}
	return v, nil
}

// intParam reads a non-negative integer query value, 0 when absent.
func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, core.WrapError(core.ErrBadRequest, fmt.Errorf("%s must be a non-negative integer, got %q", name, raw))
	}
	return n, nil
}

func boolParam(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

package api

import (
	"net/http"

	"github.com/newthinker/folio/internal/api/job"
	"github.com/newthinker/folio/internal/api/response"
)

// JobsHandler exposes async job status.
type JobsHandler struct {
	store *job.Store
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store *job.Store) *JobsHandler {
	return &JobsHandler{store: store}
}

// Get returns one job.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	j, err := h.store.Get(id)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

// List returns every tracked job.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.store.List()
	response.JSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

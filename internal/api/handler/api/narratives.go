package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/newthinker/folio/internal/api/job"
	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/narrative"
	"go.uber.org/zap"
)

// JobTypeNarratives is the job type of an async narrative batch.
const JobTypeNarratives = "narratives"

// NarrativesApp defines the interface needed from app.App.
type NarrativesApp interface {
	Narratives(ctx context.Context, view app.View, opts app.NarrativeOptions) (*narrative.Report, error)
	RetryNarrative(ctx context.Context, ticker string) (narrative.Item, error)
	NarrativeItems() []narrative.Item
}

// NarrativesHandler runs and inspects narrative batches.
type NarrativesHandler struct {
	app    NarrativesApp
	jobs   *job.Store
	logger *zap.Logger
}

// NewNarrativesHandler creates a new narratives handler. jobs may be nil,
// in which case every run is synchronous.
func NewNarrativesHandler(app NarrativesApp, jobs *job.Store, logger *zap.Logger) *NarrativesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrativesHandler{app: app, jobs: jobs, logger: logger}
}

// List returns the latest narrative stored for each position.
func (h *NarrativesHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.app.NarrativeItems()
	if items == nil {
		items = []narrative.Item{}
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// Run starts a batch over ?view. With ?async=true the batch runs in the
// background and the response is 202 with a job to poll. ?refresh=true
// regenerates positions that already have a narrative.
func (h *NarrativesHandler) Run(w http.ResponseWriter, r *http.Request) {
	view, err := viewParam(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	opts := app.NarrativeOptions{Refresh: boolParam(r, "refresh")}

	if !boolParam(r, "async") || h.jobs == nil {
		report, err := h.app.Narratives(r.Context(), view, opts)
		if err != nil {
			response.Fail(w, err)
			return
		}
		response.JSON(w, http.StatusOK, report)
		return
	}

	j := h.jobs.Create(JobTypeNarratives)
	go h.runJob(context.WithoutCancel(r.Context()), j.ID, view, opts)

	response.JSON(w, http.StatusAccepted, j)
}

func (h *NarrativesHandler) runJob(ctx context.Context, id string, view app.View, opts app.NarrativeOptions) {
	h.jobs.Update(id, func(j *job.Job) { j.Status = job.StatusRunning })

	report, err := h.app.Narratives(ctx, view, opts)
	h.jobs.Update(id, func(j *job.Job) {
		j.Progress = 100
		if err != nil {
			j.Status = job.StatusFailed
			j.Error = job.FailureFrom(err)
			return
		}
		j.Status = job.StatusComplete
		j.Result = report
	})
	if err != nil {
		h.logger.Warn("narrative job failed", zap.String("job", id), zap.Error(err))
	}
}

// Retry regenerates one position's narrative.
func (h *NarrativesHandler) Retry(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		response.Fail(w, core.ErrBadRequest)
		return
	}

	item, err := h.app.RetryNarrative(r.Context(), ticker)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

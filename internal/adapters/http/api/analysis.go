package api

import (
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/okian/matchload/internal/app"
)

const maxAnalysisBody = 1 << 16

// AnalysisHandler queues analysis jobs and reports their state.
type AnalysisHandler struct {
	deps Dependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps Dependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandleSubmit handles POST /api/analysis. The job is returned with 202 and
// polled at /api/analysis/{id}.
func (h *AnalysisHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in service.AnalysisInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalysisBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		respond(w, r, 0, nil, WrapKind("decode analysis", ErrBadRequest, err))
		return
	}
	job, err := h.deps.SubmitAnalysis(r.Context(), in)
	if err == nil {
		w.Header().Set("Location", "/api/analysis/"+job.ID)
	}
	respond(w, r, http.StatusAccepted, job, Wrap("submit analysis", err))
}

// HandleJob handles GET /api/analysis/{id}.
func (h *AnalysisHandler) HandleJob(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respond(w, r, 0, nil, NewKind("analysis job", ErrBadRequest))
		return
	}
	job, err := h.deps.Job(r.Context(), id)
	respond(w, r, http.StatusOK, job, Wrap("analysis job", err))
}

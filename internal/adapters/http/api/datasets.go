package api

import (
	"net/http"
	"strings"
)

// DatasetsHandler serves the recovery, capability, explorer and priority
// views.
type DatasetsHandler struct {
	deps Dependencies
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps Dependencies) *DatasetsHandler {
	return &DatasetsHandler{deps: deps}
}

// HandleRecovery handles GET /api/recovery?category=.
func (h *DatasetsHandler) HandleRecovery(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	summary, err := h.deps.Recovery(r.Context(), category)
	respond(w, r, http.StatusOK, summary, Wrap("recovery", err))
}

// HandleCapability handles GET /api/capability?movement=.
func (h *DatasetsHandler) HandleCapability(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Capability(r.Context(), r.URL.Query().Get("movement"))
	respond(w, r, http.StatusOK, view, Wrap("capability", err))
}

// HandleDistribution handles GET /api/capability/distribution.
func (h *DatasetsHandler) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	grades, err := h.deps.CapabilityDistribution(r.Context())
	respond(w, r, http.StatusOK, map[string]any{"grades": grades}, Wrap("capability distribution", err))
}

// HandleExplorerGPS handles GET /api/explorer/gps.
func (h *DatasetsHandler) HandleExplorerGPS(w http.ResponseWriter, r *http.Request) {
	table, err := h.deps.ExplorerGPS(r.Context())
	respond(w, r, http.StatusOK, table, Wrap("explorer gps", err))
}

// HandleExplorerCapability handles GET /api/explorer/capability.
func (h *DatasetsHandler) HandleExplorerCapability(w http.ResponseWriter, r *http.Request) {
	table, err := h.deps.ExplorerCapability(r.Context())
	respond(w, r, http.StatusOK, table, Wrap("explorer capability", err))
}

// HandlePriorities handles GET /api/priorities.
func (h *DatasetsHandler) HandlePriorities(w http.ResponseWriter, r *http.Request) {
	board, err := h.deps.Priorities(r.Context())
	respond(w, r, http.StatusOK, board, Wrap("priorities", err))
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/matchload/internal/domain/gps"
)

// LoadHandler serves the GPS load views.
type LoadHandler struct {
	deps Dependencies
}

// NewLoadHandler creates a new load handler.
func NewLoadHandler(deps Dependencies) *LoadHandler {
	return &LoadHandler{deps: deps}
}

type sessionsResponse struct {
	Season     string        `json:"season,omitempty"`
	Normalized bool          `json:"normalized"`
	Sessions   []gps.Session `json:"sessions"`
}

func season(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("season"))
}

// HandleSeasons handles GET /api/seasons.
func (h *LoadHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.deps.Seasons(r.Context())
	respond(w, r, http.StatusOK, map[string]any{"seasons": seasons}, Wrap("seasons", err))
}

// HandleDurations handles GET /api/cycles/durations?season=.
func (h *LoadHandler) HandleDurations(w http.ResponseWriter, r *http.Request) {
	durations, err := h.deps.CycleDurations(r.Context(), season(r))
	respond(w, r, http.StatusOK, map[string]any{"season": season(r), "durations": durations}, Wrap("cycle durations", err))
}

// HandleCycles handles GET /api/cycles?season=&length=&normalize=.
func (h *LoadHandler) HandleCycles(w http.ResponseWriter, r *http.Request) {
	length, err := queryInt(r, "length")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	normalize, err := queryBool(r, "normalize")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	res, err := h.deps.Cycles(r.Context(), season(r), length, normalize)
	respond(w, r, http.StatusOK, res, Wrap("cycles", err))
}

// HandleMatches handles GET /api/matches?season=&normalize=.
func (h *LoadHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	h.sessions(w, r, "matches", h.deps.Matches)
}

// HandleTraining handles GET /api/training?season=&normalize=.
func (h *LoadHandler) HandleTraining(w http.ResponseWriter, r *http.Request) {
	h.sessions(w, r, "training", h.deps.Training)
}

func (h *LoadHandler) sessions(w http.ResponseWriter, r *http.Request, op string, get func(ctx context.Context, season string, normalize bool) ([]gps.Session, error)) {
	normalize, err := queryBool(r, "normalize")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	sessions, err := get(r.Context(), season(r), normalize)
	if sessions == nil {
		sessions = []gps.Session{}
	}
	respond(w, r, http.StatusOK, sessionsResponse{Season: season(r), Normalized: normalize, Sessions: sessions}, Wrap(op, err))
}

// HandleLastMatch handles GET /api/matches/last?season=.
func (h *LoadHandler) HandleLastMatch(w http.ResponseWriter, r *http.Request) {
	summary, err := h.deps.LastMatch(r.Context(), season(r))
	respond(w, r, http.StatusOK, summary, Wrap("last match", err))
}

// HandleHeartRate handles GET /api/matches/heart-rate?season=.
func (h *LoadHandler) HandleHeartRate(w http.ResponseWriter, r *http.Request) {
	zones, err := h.deps.HeartRate(r.Context(), season(r))
	if zones == nil {
		zones = []gps.ZoneMinutes{}
	}
	respond(w, r, http.StatusOK, map[string]any{"season": season(r), "zones": zones}, Wrap("heart rate", err))
}

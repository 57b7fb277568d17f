package api

import (
	"net/http"
	"strings"

	"github.com/okian/matchload/internal/adapters/external"
)

// PlayersHandler serves squad, biography, injury and news lookups.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

func playerName(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		return "", NewKind("player name", ErrBadRequest)
	}
	return name, nil
}

// HandlePlayers handles GET /api/players.
func (h *PlayersHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.Players(r.Context())
	if players == nil {
		players = []external.Player{}
	}
	respond(w, r, http.StatusOK, map[string]any{"players": players}, Wrap("players", err))
}

// HandleBio handles GET /api/players/{name}/bio.
func (h *PlayersHandler) HandleBio(w http.ResponseWriter, r *http.Request) {
	name, err := playerName(r)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	profile, err := h.deps.PlayerProfile(r.Context(), name)
	respond(w, r, http.StatusOK, profile, Wrap("player bio", err))
}

// HandleInjuries handles GET /api/players/{name}/injuries.
func (h *PlayersHandler) HandleInjuries(w http.ResponseWriter, r *http.Request) {
	name, err := playerName(r)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	report, err := h.deps.PlayerInjuries(r.Context(), name)
	respond(w, r, http.StatusOK, report, Wrap("player injuries", err))
}

// HandleNews handles GET /api/players/{name}/news.
func (h *PlayersHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	name, err := playerName(r)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	articles, err := h.deps.PlayerNews(r.Context(), name)
	if articles == nil {
		articles = []external.Article{}
	}
	respond(w, r, http.StatusOK, map[string]any{"player": name, "articles": articles}, Wrap("player news", err))
}

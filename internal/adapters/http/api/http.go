// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/matchload/internal/adapters/external"
	"github.com/okian/matchload/internal/adapters/repository"
	service "github.com/okian/matchload/internal/app"
	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/explorer"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/internal/domain/priority"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Seasons(ctx context.Context) ([]string, error)
	CycleDurations(ctx context.Context, season string) ([]int, error)
	Cycles(ctx context.Context, season string, length int, normalize bool) (loadcalendar.Result, error)
	Matches(ctx context.Context, season string, normalize bool) ([]gps.Session, error)
	Training(ctx context.Context, season string, normalize bool) ([]gps.Session, error)
	LastMatch(ctx context.Context, season string) (gps.LastMatchSummary, error)
	HeartRate(ctx context.Context, season string) ([]gps.ZoneMinutes, error)

	Recovery(ctx context.Context, category string) (recovery.Summary, error)
	Capability(ctx context.Context, movement string) (service.CapabilityView, error)
	CapabilityDistribution(ctx context.Context) ([]capability.GradeCount, error)
	ExplorerGPS(ctx context.Context) (explorer.Table, error)
	ExplorerCapability(ctx context.Context) (explorer.Table, error)
	Priorities(ctx context.Context) (priority.Board, error)

	Players(ctx context.Context) ([]external.Player, error)
	PlayerProfile(ctx context.Context, name string) (service.Profile, error)
	PlayerInjuries(ctx context.Context, name string) (service.InjuryReport, error)
	PlayerNews(ctx context.Context, name string) ([]external.Article, error)

	SubmitAnalysis(ctx context.Context, in service.AnalysisInput) (repository.Job, error)
	Job(ctx context.Context, id string) (repository.Job, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
	loadHandler      *LoadHandler
	datasetsHandler  *DatasetsHandler
	playersHandler   *PlayersHandler
	analysisHandler  *AnalysisHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: newDashboardHandler(),
		loadHandler:      NewLoadHandler(deps),
		datasetsHandler:  NewDatasetsHandler(deps),
		playersHandler:   NewPlayersHandler(deps),
		analysisHandler:  NewAnalysisHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	routes := []struct {
		pattern  string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"GET /healthz", "healthz", s.healthHandler.HandleHealth},
		{"GET /stats", "stats", s.statsHandler.HandleStats},
		{"GET /dashboard", "dashboard", s.dashboardHandler.HandleDashboard},

		{"GET /api/seasons", "seasons", s.loadHandler.HandleSeasons},
		{"GET /api/cycles/durations", "cycle_durations", s.loadHandler.HandleDurations},
		{"GET /api/cycles", "cycles", s.loadHandler.HandleCycles},
		{"GET /api/matches", "matches", s.loadHandler.HandleMatches},
		{"GET /api/matches/last", "last_match", s.loadHandler.HandleLastMatch},
		{"GET /api/matches/heart-rate", "heart_rate", s.loadHandler.HandleHeartRate},
		{"GET /api/training", "training", s.loadHandler.HandleTraining},

		{"GET /api/recovery", "recovery", s.datasetsHandler.HandleRecovery},
		{"GET /api/capability", "capability", s.datasetsHandler.HandleCapability},
		{"GET /api/capability/distribution", "capability_distribution", s.datasetsHandler.HandleDistribution},
		{"GET /api/explorer/gps", "explorer_gps", s.datasetsHandler.HandleExplorerGPS},
		{"GET /api/explorer/capability", "explorer_capability", s.datasetsHandler.HandleExplorerCapability},
		{"GET /api/priorities", "priorities", s.datasetsHandler.HandlePriorities},

		{"GET /api/players", "players", s.playersHandler.HandlePlayers},
		{"GET /api/players/{name}/bio", "player_bio", s.playersHandler.HandleBio},
		{"GET /api/players/{name}/injuries", "player_injuries", s.playersHandler.HandleInjuries},
		{"GET /api/players/{name}/news", "player_news", s.playersHandler.HandleNews},

		{"POST /api/analysis", "analysis_submit", s.analysisHandler.HandleSubmit},
		{"GET /api/analysis/{id}", "analysis_job", s.analysisHandler.HandleJob},
	}
	for _, rt := range routes {
		mux.Handle(rt.pattern, RequestIDMiddleware(MetricsMiddleware(rt.handler, rt.endpoint)))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing the status, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal", Message: "response encoding failed"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return err
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	_ = writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respond writes v, or the mapped error response when err is set. Server
// side failures are logged with the request id.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err == nil {
		if err := writeJSON(w, status, v); err != nil {
			logger.Get().Named("api").Error(r.Context(), "response encoding failed",
				logger.String("path", r.URL.Path),
				logger.Error(err),
			)
		}
		return
	}
	code, kind := statusOf(err)
	if code >= statusInternalError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", code),
			logger.Error(err),
		)
	}
	writeError(w, code, kind, err)
}

// queryBool parses an optional boolean parameter; absent is false.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, WrapKind("query "+name, ErrBadRequest, fmt.Errorf("%q is not a boolean", raw))
	}
	return v, nil
}

// queryInt parses a required integer parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, WrapKind("query "+name, ErrBadRequest, errors.New("missing"))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapKind("query "+name, ErrBadRequest, fmt.Errorf("%q is not an integer", raw))
	}
	return v, nil
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/okian/volmatch/internal/domain/types"
	"github.com/okian/volmatch/pkg/errs"
)

// DefaultPrefix is the path under which the matching routes are mounted.
const DefaultPrefix = "/api/volunteerMatch"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MatchDependencies
	SaveDependencies
	HistoryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	matchHandler   *MatchHandler
	saveHandler    *SaveHandler
	historyHandler *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		matchHandler:   NewMatchHandler(deps),
		saveHandler:    NewSaveHandler(deps),
		historyHandler: NewHistoryHandler(deps),
	}
}

// Register attaches all HTTP routes to router. Matching routes live under
// prefix; health and stats stay at the root.
func (s *Server) Register(_ context.Context, router *mux.Router, prefix string) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	prefix = strings.TrimRight(prefix, "/")
	routes := router
	if prefix != "" {
		routes = router.PathPrefix(prefix).Subrouter()
	}
	routes.HandleFunc("/matchByEvent/{eventId}",
		MetricsMiddleware(s.matchHandler.HandleMatchByEvent, "matchByEvent")).Methods(http.MethodGet)
	routes.HandleFunc("/saveMatch",
		MetricsMiddleware(s.saveHandler.HandleSaveMatch, "saveMatch")).Methods(http.MethodPost)
	routes.HandleFunc("/history/{eventId}",
		MetricsMiddleware(s.historyHandler.HandleHistory, "history")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeKindError answers with the status and code of err's kind.
func writeKindError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), errs.Code(err), err)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrNotFound:
		return http.StatusNotFound
	case errs.ErrInvalidInput:
		return http.StatusBadRequest
	case errs.ErrPartialFailure:
		return http.StatusMultiStatus
	case errs.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Aliases of the read shapes served by the handlers.
type (
	Volunteer         = types.Volunteer
	SaveMatchResponse = types.SaveMatchResponse
	HistoryEntry      = types.HistoryEntry
)

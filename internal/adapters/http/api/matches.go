package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// MatchDependencies defines the interface for listing ranked matches.
type MatchDependencies interface {
	ListMatches(ctx context.Context, eventID string) ([]Volunteer, error)
}

// MatchHandler handles match listing requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleMatchByEvent handles GET {prefix}/matchByEvent/{eventId} requests.
func (h *MatchHandler) HandleMatchByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	volunteers, err := h.deps.ListMatches(r.Context(), eventID)
	if err != nil {
		writeKindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, volunteers)
}

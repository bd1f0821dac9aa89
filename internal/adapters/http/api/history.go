package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// HistoryDependencies defines the interface for reading match history.
type HistoryDependencies interface {
	History(ctx context.Context, eventID string) ([]HistoryEntry, error)
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleHistory handles GET {prefix}/history/{eventId} requests.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.History(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeKindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/volmatch/pkg/errs"
)

// maxSaveBody bounds the saveMatch request body.
const maxSaveBody = 1 << 20

// SaveDependencies defines the interface for committing matches.
type SaveDependencies interface {
	CommitMatches(ctx context.Context, eventID string, volunteerIDs []string) (SaveMatchResponse, error)
}

// SaveHandler handles match commit requests.
type SaveHandler struct {
	deps SaveDependencies
}

// NewSaveHandler creates a new save handler.
func NewSaveHandler(deps SaveDependencies) *SaveHandler {
	return &SaveHandler{deps: deps}
}

// saveMatchRequest mirrors the OpenAPI schema for POST /saveMatch.
type saveMatchRequest struct {
	EventID      string   `json:"eventId"`
	VolunteerIDs []string `json:"volunteerIds"`
}

// HandleSaveMatch handles POST {prefix}/saveMatch requests.
//
// A fully committed set answers 201. When only some volunteers were
// committed it answers 207 with the committed matches and the failures.
func (h *SaveHandler) HandleSaveMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_match"

	var req saveMatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSaveBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.CodeInvalidInput,
			errs.WrapKind(op, errs.ErrInvalidInput, errors.Join(ErrBadRequest, err)))
		return
	}

	res, err := h.deps.CommitMatches(r.Context(), req.EventID, req.VolunteerIDs)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case errs.KindOf(err) == errs.ErrPartialFailure:
		writeJSON(w, http.StatusMultiStatus, res)
	default:
		writeKindError(w, err)
	}
}

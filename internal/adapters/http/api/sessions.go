package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/internal/domain/types"
)

// SessionDependencies defines the interface for connect and disconnect events.
type SessionDependencies interface {
	Connect(ctx context.Context, p model.Player) error
	Disconnect(ctx context.Context, id uuid.UUID) error
}

// SessionHandler handles player session requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

func parseSession(s types.Session) (model.Player, error) {
	id, err := uuid.Parse(strings.TrimSpace(s.ID))
	if err != nil {
		return model.Player{}, fmt.Errorf("%w: invalid id", ErrBadRequest)
	}
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return model.Player{}, fmt.Errorf("%w: missing name", ErrBadRequest)
	}
	return model.Player{ID: id, Name: name}, nil
}

// HandleConnect handles POST /sessions requests. The record is loaded in the
// background, so the response only acknowledges the event.
func (h *SessionHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	var req types.Session
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	p, err := parseSession(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.Connect(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleDisconnect handles DELETE /sessions/{id} requests.
func (h *SessionHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid id", ErrBadRequest))
		return
	}
	if err := h.deps.Disconnect(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

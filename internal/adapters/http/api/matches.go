package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/okian/duels/internal/domain/model"
)

// MatchDependencies defines the interface for submitting match results.
// Submissions carrying a match_id are applied at most once.
type MatchDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	RecordMatch(ctx context.Context, r model.MatchResult) (model.Match, error)
}

// MatchHandler handles match submissions.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// matchRequest is the body of POST /matches. Duration is in milliseconds.
type matchRequest struct {
	MatchID    string  `json:"match_id"`
	Winner     string  `json:"winner"`
	Loser      string  `json:"loser"`
	Kit        string  `json:"kit"`
	DurationMS int64   `json:"duration_ms"`
	Health     float64 `json:"health"`
}

func (m matchRequest) result() (model.MatchResult, error) {
	winner, err := uuid.Parse(m.Winner)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("%w: invalid winner", ErrBadRequest)
	}
	loser, err := uuid.Parse(m.Loser)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("%w: invalid loser", ErrBadRequest)
	}
	if m.DurationMS < 0 {
		return model.MatchResult{}, fmt.Errorf("%w: negative duration", ErrBadRequest)
	}
	return model.MatchResult{
		Winner:   winner,
		Loser:    loser,
		Kit:      m.Kit,
		Duration: time.Duration(m.DurationMS) * time.Millisecond,
		Health:   m.Health,
	}, nil
}

// HandlePostMatch handles POST /matches requests.
func (h *MatchHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	res, err := req.result()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if req.MatchID != "" && h.deps.SeenAndRecord(r.Context(), req.MatchID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate"})
		return
	}
	match, err := h.deps.RecordMatch(r.Context(), res)
	if err != nil {
		if req.MatchID != "" {
			h.deps.Unrecord(r.Context(), req.MatchID)
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

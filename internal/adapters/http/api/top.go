package api

import (
	"fmt"
	"net/http"

	"github.com/okian/duels/internal/domain/types"
)

// TopDependencies defines the interface for reading published leaderboards.
// The boolean is false until a leaderboard has been built.
type TopDependencies interface {
	TopWins() (types.Leaderboard, bool)
	TopLosses() (types.Leaderboard, bool)
	TopRating(kit string) (types.Leaderboard, bool)
}

// TopHandler handles leaderboard requests.
type TopHandler struct {
	deps TopDependencies
}

// NewTopHandler creates a new leaderboard handler.
func NewTopHandler(deps TopDependencies) *TopHandler {
	return &TopHandler{deps: deps}
}

// HandleWins handles GET /top/wins requests.
func (h *TopHandler) HandleWins(w http.ResponseWriter, _ *http.Request) {
	writeTop(w, "wins")(h.deps.TopWins())
}

// HandleLosses handles GET /top/losses requests.
func (h *TopHandler) HandleLosses(w http.ResponseWriter, _ *http.Request) {
	writeTop(w, "losses")(h.deps.TopLosses())
}

// HandleRating handles GET /top/rating/{kit} requests.
func (h *TopHandler) HandleRating(w http.ResponseWriter, r *http.Request) {
	kit := r.PathValue("kit")
	writeTop(w, "rating of "+kit)(h.deps.TopRating(kit))
}

func writeTop(w http.ResponseWriter, what string) func(types.Leaderboard, bool) {
	return func(lb types.Leaderboard, ok bool) {
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: no %s leaderboard yet", ErrNotFound, what))
			return
		}
		writeJSON(w, http.StatusOK, lb)
	}
}

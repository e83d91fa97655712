package api

import (
	"fmt"
	"net/http"

	"github.com/okian/duels/internal/domain/model"
)

// UserDependencies defines the interface for record lookups.
type UserDependencies interface {
	// User resolves a UUID or a case-insensitive name to a cached record.
	User(key string) *model.User
}

// UserHandler handles record lookups.
type UserHandler struct {
	deps UserDependencies
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps}
}

// HandleGetUser handles GET /users/{key} requests.
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	u := h.deps.User(key)
	if u == nil {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrNotFound, key))
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

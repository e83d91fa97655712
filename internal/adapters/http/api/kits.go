package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/okian/duels/internal/domain/kit"
)

// KitDependencies defines the interface for the live kit registry.
type KitDependencies interface {
	Kits() []kit.Kit
	AddKit(name string) (kit.Kit, error)
	RemoveKit(name string) error
}

// KitHandler handles kit requests.
type KitHandler struct {
	deps KitDependencies
}

// NewKitHandler creates a new kit handler.
func NewKitHandler(deps KitDependencies) *KitHandler {
	return &KitHandler{deps: deps}
}

type kitsResponse struct {
	Kits []kit.Kit `json:"kits"`
}

// HandleList handles GET /kits requests.
func (h *KitHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	kits := h.deps.Kits()
	if kits == nil {
		kits = []kit.Kit{}
	}
	writeJSON(w, http.StatusOK, kitsResponse{Kits: kits})
}

// HandleAdd handles POST /kits requests.
func (h *KitHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req kit.Kit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	k, err := h.deps.AddKit(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, k)
}

// HandleRemove handles DELETE /kits/{name} requests.
func (h *KitHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.RemoveKit(r.PathValue("name")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

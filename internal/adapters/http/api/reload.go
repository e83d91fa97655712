package api

import (
	"context"
	"net/http"
)

// ReloadDependencies defines the interface for module reloads.
type ReloadDependencies interface {
	ReloadableNames() []string
	Complete(prefix string) []string
	Reload(ctx context.Context) error
	ReloadModule(ctx context.Context, name string) (string, error)
}

// ReloadHandler handles reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

type modulesResponse struct {
	Modules []string `json:"modules"`
}

type reloadResponse struct {
	Status string `json:"status"`
	Module string `json:"module,omitempty"`
}

func names(v []string) modulesResponse {
	if v == nil {
		v = []string{}
	}
	return modulesResponse{Modules: v}
}

// HandleList handles GET /reload requests.
func (h *ReloadHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, names(h.deps.ReloadableNames()))
}

// HandleComplete handles GET /reload/complete?prefix= requests.
func (h *ReloadHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, names(h.deps.Complete(r.URL.Query().Get("prefix"))))
}

// HandleReloadAll handles POST /reload requests.
func (h *ReloadHandler) HandleReloadAll(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Reload(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded"})
}

// HandleReloadModule handles POST /reload/{module} requests.
func (h *ReloadHandler) HandleReloadModule(w http.ResponseWriter, r *http.Request) {
	name, err := h.deps.ReloadModule(r.Context(), r.PathValue("module"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded", Module: name})
}

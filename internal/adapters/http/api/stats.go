package api

import (
	"net/http"
)

// StatsProvider exposes the record service's runtime counters and the
// lifecycle state of its modules.
type StatsProvider interface {
	GetStats() map[string]interface{}
	// ModuleStates maps each registered module to "loaded" or "unloaded".
	ModuleStates() map[string]string
	Disabled() bool
}

// StatsHandler serves service and module status.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type moduleStatesResponse struct {
	Modules  map[string]string `json:"modules"`
	Disabled bool              `json:"disabled"`
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// HandleModules handles GET /stats/modules. A disabled host answers 503.
func (h *StatsHandler) HandleModules(w http.ResponseWriter, _ *http.Request) {
	resp := moduleStatesResponse{
		Modules:  h.statsProvider.ModuleStates(),
		Disabled: h.statsProvider.Disabled(),
	}
	status := http.StatusOK
	if resp.Disabled {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

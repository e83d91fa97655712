// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/okian/duels/internal/adapters/repository"
	"github.com/okian/duels/internal/domain/kit"
	"github.com/okian/duels/internal/domain/lifecycle"
	"github.com/okian/duels/internal/domain/users"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	UserDependencies
	MatchDependencies
	TopDependencies
	KitDependencies
	ReloadDependencies
	NoticeDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	userHandler    *UserHandler
	matchHandler   *MatchHandler
	topHandler     *TopHandler
	kitHandler     *KitHandler
	reloadHandler  *ReloadHandler
	noticeHandler  *NoticeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		sessionHandler: NewSessionHandler(deps),
		userHandler:    NewUserHandler(deps),
		matchHandler:   NewMatchHandler(deps),
		topHandler:     NewTopHandler(deps),
		kitHandler:     NewKitHandler(deps),
		reloadHandler:  NewReloadHandler(deps),
		noticeHandler:  NewNoticeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /stats/modules", MetricsMiddleware(s.statsHandler.HandleModules, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionHandler.HandleConnect, "sessions"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleDisconnect, "sessions"))

	mux.HandleFunc("GET /users/{key}", MetricsMiddleware(s.userHandler.HandleGetUser, "users"))
	mux.HandleFunc("POST /matches", MetricsMiddleware(s.matchHandler.HandlePostMatch, "matches"))

	mux.HandleFunc("GET /top/wins", MetricsMiddleware(s.topHandler.HandleWins, "top"))
	mux.HandleFunc("GET /top/losses", MetricsMiddleware(s.topHandler.HandleLosses, "top"))
	mux.HandleFunc("GET /top/rating/{kit}", MetricsMiddleware(s.topHandler.HandleRating, "top"))

	mux.HandleFunc("GET /kits", MetricsMiddleware(s.kitHandler.HandleList, "kits"))
	mux.HandleFunc("POST /kits", MetricsMiddleware(s.kitHandler.HandleAdd, "kits"))
	mux.HandleFunc("DELETE /kits/{name}", MetricsMiddleware(s.kitHandler.HandleRemove, "kits"))

	mux.HandleFunc("GET /reload", MetricsMiddleware(s.reloadHandler.HandleList, "reload"))
	mux.HandleFunc("GET /reload/complete", MetricsMiddleware(s.reloadHandler.HandleComplete, "reload"))
	mux.HandleFunc("POST /reload", MetricsMiddleware(s.reloadHandler.HandleReloadAll, "reload"))
	mux.HandleFunc("POST /reload/{module}", MetricsMiddleware(s.reloadHandler.HandleReloadModule, "reload"))

	mux.HandleFunc("GET /notices/{id}", MetricsMiddleware(s.noticeHandler.HandleDrain, "notices"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, users.ErrInvalidMatch),
		errors.Is(err, kit.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound),
		errors.Is(err, users.ErrNotCached),
		errors.Is(err, users.ErrNotOnline),
		errors.Is(err, kit.ErrKitNotFound),
		errors.Is(err, lifecycle.ErrModuleNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, kit.ErrKitExists),
		errors.Is(err, lifecycle.ErrNotReloadable):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, lifecycle.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "disabled", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

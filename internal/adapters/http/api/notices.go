package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/notice"
)

// NoticeDependencies defines the interface for pending player notices.
type NoticeDependencies interface {
	Notices(id uuid.UUID) []notice.Notice
}

// NoticeHandler hands pending notices to clients.
type NoticeHandler struct {
	deps NoticeDependencies
}

// NewNoticeHandler creates a new notice handler.
func NewNoticeHandler(deps NoticeDependencies) *NoticeHandler {
	return &NoticeHandler{deps: deps}
}

type noticesResponse struct {
	Notices []notice.Notice `json:"notices"`
}

// HandleDrain handles GET /notices/{id} requests. Returned notices are removed.
func (h *NoticeHandler) HandleDrain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid id", ErrBadRequest))
		return
	}
	out := h.deps.Notices(id)
	if out == nil {
		out = []notice.Notice{}
	}
	writeJSON(w, http.StatusOK, noticesResponse{Notices: out})
}

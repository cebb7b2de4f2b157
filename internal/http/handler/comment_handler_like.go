package handler

import (
	"net/http"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
)

// ToggleLike flips the viewer's like on a comment.
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUserID(r.Context())

	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	comment, err := h.service.GetComment(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	outcome, err := h.service.ToggleLike(r.Context(), comment.ID, viewer)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	code := http.StatusOK
	if !outcome.OK {
		code = http.StatusNotFound
	}
	lib.WriteJSON(w, code, outcome)
}

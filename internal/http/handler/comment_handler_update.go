package handler

import (
	"net/http"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/services"
)

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// Update edits the viewer's own comment. A missing comment and someone
// else's comment both answer 404.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUserID(r.Context())

	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request UpdateCommentRequest
	if err := decode(w, r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	updated, err := h.service.UpdateComment(r.Context(), services.UpdateCommentInput{
		UID:      uid,
		AuthorID: viewer,
		Content:  request.Content,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !updated {
		h.fail(w, r, lib.ErrNotFound)
		return
	}

	comment, err := h.service.GetComment(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, comment)
}

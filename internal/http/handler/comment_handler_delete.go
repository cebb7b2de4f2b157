package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/services"
)

type DeleteManyCommentsRequest struct {
	UIDs []uuid.UUID `json:"uids"`
}

// Delete removes one comment. Requests authenticated by an API token act as
// moderators; everyone else may only delete their own comments.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	input := services.DeleteCommentInput{UID: uid}
	if _, moderator := middleware.GetTokenID(r.Context()); !moderator {
		viewer, ok := middleware.GetUserID(r.Context())
		if !ok {
			lib.WriteError(w, r, lib.UnauthenticatedError(""))
			return
		}
		input.AuthorID = &viewer
	}

	outcome, err := h.service.DeleteComment(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	code := http.StatusOK
	switch {
	case outcome.NotFound:
		code = http.StatusNotFound
	case outcome.Forbidden:
		code = http.StatusForbidden
	case outcome.BlockedDueToReplies:
		code = http.StatusConflict
	}
	lib.WriteJSON(w, code, outcome)
}

func (h *CommentHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var request DeleteManyCommentsRequest
	if err := decode(w, r, &request); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(request.UIDs) == 0 {
		h.fail(w, r, fmt.Errorf("%w: uids is empty", lib.ErrInvalidArgument))
		return
	}

	outcome, err := h.service.DeleteManyComments(r.Context(), request.UIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, outcome)
}

package handler

import (
	"net/http"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/services"
)

type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parentId"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUserID(r.Context())

	ownerUID, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request CreateCommentRequest
	if err := decode(w, r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	ownerID, err := h.owner(r.Context(), ownerUID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), services.CreateCommentInput{
		OwnerID:  ownerID,
		AuthorID: viewer,
		Content:  request.Content,
		ParentID: request.ParentID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, comment)
}

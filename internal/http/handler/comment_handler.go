package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

// OwnerResolver maps the uid of a post or todo to the owner id its thread
// is keyed on.
type OwnerResolver func(ctx context.Context, uid uuid.UUID) (int64, error)

// CommentHandler serves one comment thread.
type CommentHandler struct {
	log     *zap.Logger
	service services.CommentService
	owner   OwnerResolver
}

func NewCommentHandler(log *zap.Logger, service services.CommentService, owner OwnerResolver) *CommentHandler {
	return &CommentHandler{
		log:     log,
		service: service,
		owner:   owner,
	}
}

func (h *CommentHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(h.log, w, r, err)
}

// List returns the roots of the owner's thread, or the replies of the root
// given as ?parent=<id>.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerUID, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ownerID, err := h.owner(r.Context(), ownerUID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	values := r.URL.Query()
	input := services.ListCommentsInput{
		OwnerID: ownerID,
		Sort:    orm.CommentSort(values.Get("sort")),
		Order:   lib.ParseOrder(values.Get("order"), ""),
		Cursor:  values.Get("cursor"),
	}
	if raw := values.Get("order"); raw != "" && input.Order == "" {
		h.fail(w, r, fmt.Errorf("%w: unknown order %q", lib.ErrInvalidArgument, raw))
		return
	}
	if raw := values.Get("limit"); raw != "" {
		input.Limit = lib.ParseLimit(raw)
	}
	if raw := values.Get("parent"); raw != "" {
		parentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: malformed parent", lib.ErrInvalidArgument))
			return
		}
		input.ParentID = &parentID
	}
	if viewer, ok := middleware.GetUserID(r.Context()); ok {
		input.ViewerID = &viewer
	}

	page, err := h.service.ListComments(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, page)
}

func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	lib.WriteJSON(w, http.StatusOK, comment)
}

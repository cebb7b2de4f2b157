package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/services"
)

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	input := services.ListPostsInput{Query: query}
	if raw := r.URL.Query().Get("board"); raw != "" {
		boardUID, err := uuid.Parse(raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: malformed board", lib.ErrInvalidArgument))
			return
		}
		input.BoardUID = &boardUID
	}

	result, err := h.posts.ListPosts(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.posts.GetPost(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, post)
}

// CreatePost publishes a post on behalf of the viewer.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUserID(r.Context())

	var input services.CreatePostInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	input.AuthorID = viewer

	post, err := h.posts.CreatePost(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var input services.UpdatePostInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), uid, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, post)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.posts.DeletePost(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func postOwner(posts services.PostService) OwnerResolver {
	return func(ctx context.Context, uid uuid.UUID) (int64, error) {
		post, err := posts.GetPost(ctx, uid)
		if err != nil {
			return 0, err
		}
		return post.ID, nil
	}
}

// UploadPostFile accepts a multipart "file" part and returns the attachment
// reference to put into a post's files.
func (h *Handlers) UploadPostFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: multipart field \"file\" is required", lib.ErrInvalidArgument))
		return
	}
	defer file.Close()

	uploaded, err := h.posts.UploadFile(r.Context(), services.UploadFileInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, uploaded)
}

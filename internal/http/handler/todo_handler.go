package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/services"
)

func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.todos.ListTodos(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetTodo(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	todo, err := h.todos.GetTodo(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, todo)
}

func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUserID(r.Context())

	var input services.TodoInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	input.AuthorID = viewer

	todo, err := h.todos.CreateTodo(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, todo)
}

func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var input services.TodoInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	todo, err := h.todos.UpdateTodo(r.Context(), uid, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, todo)
}

func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.todos.DeleteTodo(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func todoOwner(todos services.TodoService) OwnerResolver {
	return func(ctx context.Context, uid uuid.UUID) (int64, error) {
		todo, err := todos.GetTodo(ctx, uid)
		if err != nil {
			return 0, err
		}
		return todo.ID, nil
	}
}

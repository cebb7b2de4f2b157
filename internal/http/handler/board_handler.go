package handler

import (
	"net/http"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/services"
)

func (h *Handlers) ListBoards(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.boards.ListBoards(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetBoard(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	board, err := h.boards.GetBoard(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, board)
}

func (h *Handlers) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var input services.BoardInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	board, err := h.boards.CreateBoard(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, board)
}

func (h *Handlers) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var input services.BoardInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	board, err := h.boards.UpdateBoard(r.Context(), uid, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, board)
}

func (h *Handlers) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.boards.DeleteBoard(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

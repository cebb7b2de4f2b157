package handler

import (
	"net/http"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

// CreatedToken carries the plain token; it is never shown again.
type CreatedToken struct {
	Token *orm.Token `json:"token"`
	Plain string     `json:"plain"`
}

func (h *Handlers) ListTokens(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.tokens.ListTokens(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetToken(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.tokens.GetToken(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, token)
}

func (h *Handlers) CreateToken(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTokenInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	token, plain, err := h.tokens.CreateToken(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, CreatedToken{Token: token, Plain: plain})
}

func (h *Handlers) UpdateToken(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var input services.UpdateTokenInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.tokens.UpdateToken(r.Context(), uid, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, token)
}

func (h *Handlers) DeleteToken(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.tokens.DeleteToken(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

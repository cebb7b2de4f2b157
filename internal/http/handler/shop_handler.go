package handler

import (
	"net/http"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/services"
)

func (h *Handlers) ListShopItems(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.shop.ListShopItems(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetShopItem(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.shop.GetShopItem(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, item)
}

func (h *Handlers) CreateShopItem(w http.ResponseWriter, r *http.Request) {
	var input services.ShopItemInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.shop.CreateShopItem(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handlers) UpdateShopItem(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var input services.ShopItemInput
	if err := decode(w, r, &input); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.shop.UpdateShopItem(r.Context(), uid, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lib.WriteJSON(w, http.StatusOK, item)
}

func (h *Handlers) DeleteShopItem(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.shop.DeleteShopItem(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

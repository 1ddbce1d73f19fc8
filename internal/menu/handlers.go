package menu

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/menu"
	"github.com/antonminaichev/foodorder/internal/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List accepts category, vegetarian and popular query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := menu.Filter{
		Category:       q.Get("category"),
		VegetarianOnly: q.Get("vegetarian") == "true" || q.Get("isVegetarian") == "true",
		PopularOnly:    q.Get("popular") == "true" || q.Get("isPopular") == "true",
	}
	items, err := h.svc.FindAvailable(r.Context(), f)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.svc.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := validate.DecodeJSON(r.Body, &in); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	it, err := h.svc.Create(r.Context(), in)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := validate.DecodeJSON(r.Body, &in); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	it, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

package order

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/middleware"
	"github.com/antonminaichev/foodorder/internal/types/order"
	"github.com/antonminaichev/foodorder/internal/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type cancelReq struct {
	Reason string `json:"cancellationReason" validate:"max=500"`
}

type statusReq struct {
	Status order.Status `json:"status" validate:"required"`
	Note   string       `json:"note" validate:"max=500"`
}

type deliveryTimeReq struct {
	Minutes int `json:"minutes" validate:"required"`
}

type reorderReq struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req CreateRequest
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	o, err := h.svc.CreateOrder(r.Context(), userID, req)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	q, err := parsePaging(r)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	q.Status = order.Status(r.URL.Query().Get("status"))
	page, err := h.svc.ListOrders(r.Context(), userID, q)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	limit := 0
	if raw := chi.URLParam(r, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apperr.HTTPError(w, apperr.Validation("limit must be an integer"))
			return
		}
		limit = n
	}
	orders, err := h.svc.RecentOrders(r.Context(), userID, limit)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	o, err := h.svc.GetOrder(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req cancelReq
	if err := decodeOptional(r, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	o, err := h.svc.CancelOrder(r.Context(), userID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req reorderReq
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	cart, err := h.svc.Reorder(r.Context(), userID, req.OrderID)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	cart, err := h.svc.Cart(r.Context(), userID)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateDeliveryTime(w http.ResponseWriter, r *http.Request) {
	var req deliveryTimeReq
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	o, err := h.svc.UpdateDeliveryTime(r.Context(), chi.URLParam(r, "id"), req.Minutes)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ListAll accepts status, number, from and to (YYYY-MM-DD or RFC 3339) plus
// page and limit.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	q, err := parsePaging(r)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	params := r.URL.Query()
	q.Status = order.Status(params.Get("status"))
	q.Number = params.Get("number")
	if q.From, err = parseDate(params.Get("from"), false); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	if q.To, err = parseDate(params.Get("to"), true); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	page, err := h.svc.ListAll(r.Context(), q)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parsePaging(r *http.Request) (ListQuery, error) {
	var q ListQuery
	params := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"limit", &q.Limit}} {
		raw := params.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, apperr.Validation("%s must be a positive integer", p.name)
		}
		*p.dst = n
	}
	return q, nil
}

// parseDate reads a bound of a created-at range. A bare date used as the
// upper bound covers that whole day.
func parseDate(raw string, upper bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("malformed date %q", raw)
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// decodeOptional decodes a JSON body when one was sent.
func decodeOptional(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Validation("read request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return validate.DecodeJSON(bytes.NewReader(body), dst)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

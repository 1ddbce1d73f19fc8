package payment

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/middleware"
	"github.com/antonminaichev/foodorder/internal/types/payment"
	"github.com/antonminaichev/foodorder/internal/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type keyResp struct {
	Key string `json:"key"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req payment.CreateRequest
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	g, err := h.svc.CreatePayment(r.Context(), userID, req.OrderID)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(g)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req payment.VerifyRequest
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		apperr.HTTPError(w, err)
		return
	}
	o, err := h.svc.Verify(r.Context(), userID, req)
	if err != nil {
		apperr.HTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}

func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keyResp{Key: h.svc.KeyID()})
}

// Webhook expects middleware.WebhookSignature in front of it.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var evt payment.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.svc.HandleWebhook(r.Context(), evt); err != nil {
		logger.Log.Error("webhook", zap.String("event", evt.Event), zap.Error(err))
		apperr.HTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

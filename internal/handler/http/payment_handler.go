package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
	"github.com/vasiliy-maslov/marketfresh/internal/payment"
)

type CreatePaymentIntentRequest struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
}

type ConfirmPaymentIntentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required,uuid"`
}

type PaymentHandler struct {
	service  payment.Service
	orders   order.Service
	validate *validator.Validate
}

func NewPaymentHandler(service payment.Service, orders order.Service) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		orders:   orders,
		validate: validator.New(),
	}
}

func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Post("/payments/intent", h.handleCreateIntent)
	router.Post("/payments/confirm", h.handleConfirmIntent)
}

func (h *PaymentHandler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentIntentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), uuid.FromStringOrNil(req.OrderID))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toPaymentIntentResponse(intent))
}

func (h *PaymentHandler) handleConfirmIntent(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentIntentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	intent, err := h.service.ConfirmIntent(r.Context(), uuid.FromStringOrNil(req.PaymentIntentID))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), intent.OrderID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, OrderEnvelope{Order: toOrderResponse(o)})
}

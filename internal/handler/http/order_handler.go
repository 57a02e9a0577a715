package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
)

type CustomerRequest struct {
	Name            string  `json:"name" validate:"required,min=1"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,min=1"`
	DeliveryAddress string  `json:"deliveryAddress" validate:"required,min=5"`
}

type CreateOrderRequest struct {
	CartID   string          `json:"cartId" validate:"required,uuid"`
	Customer CustomerRequest `json:"customer"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/{id}", h.handleGetOrder)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := order.CreateInput{
		CartID: uuid.FromStringOrNil(req.CartID),
		Customer: order.Customer{
			Name:            req.Customer.Name,
			Email:           req.Customer.Email,
			Phone:           req.Customer.Phone,
			DeliveryAddress: req.Customer.DeliveryAddress,
		},
	}

	o, err := h.service.CreateOrder(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, OrderEnvelope{Order: toOrderResponse(o)})
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ids, ok := uuidParams(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.GetOrder(r.Context(), ids[0])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, OrderEnvelope{Order: toOrderResponse(o)})
}

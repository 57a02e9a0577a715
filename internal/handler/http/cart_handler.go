package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
)

type SetCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Post("/carts", h.handleCreateCart)
	router.Get("/carts/{id}", h.handleGetCart)
	router.Put("/carts/{id}/items", h.handleSetItem)
	router.Delete("/carts/{id}/items/{productId}", h.handleRemoveItem)
}

func (h *CartHandler) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.CreateCart(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, CartCreatedEnvelope{CartID: c.ID})
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ids, ok := uuidParams(w, r, "id")
	if !ok {
		return
	}

	h.respondWithCart(w, r, ids[0])
}

func (h *CartHandler) handleSetItem(w http.ResponseWriter, r *http.Request) {
	ids, ok := uuidParams(w, r, "id")
	if !ok {
		return
	}

	var req SetCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	productID := uuid.FromStringOrNil(req.ProductID)
	if err := h.service.SetItem(r.Context(), ids[0], productID, req.Quantity); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.respondWithCart(w, r, ids[0])
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ids, ok := uuidParams(w, r, "id", "productId")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), ids[0], ids[1]); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.respondWithCart(w, r, ids[0])
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	c, err := h.service.GetCart(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CartEnvelope{Cart: toCartResponse(c)})
}

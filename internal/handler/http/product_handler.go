package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProductByID)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var filter product.Filter

	if values, ok := r.URL.Query()["type"]; ok {
		if len(values) != 1 || h.validate.Var(values[0], "required,oneof=veg meat") != nil {
			log.Warn().Strs("type", values).Msg("Invalid product type filter")
			respondWithError(w, http.StatusBadRequest, CodeInvalidQuery, "invalid query parameters")
			return
		}
		filter.Type = product.Type(values[0])
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	resp := ProductsEnvelope{Products: make([]ProductResponse, 0, len(products))}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	ids, ok := uuidParams(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetProductByID(r.Context(), ids[0])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProductEnvelope{Product: toProductResponse(p)})
}

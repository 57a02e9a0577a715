package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/marketfresh/internal/coldchain"
)

type ColdChainHandler struct {
	service coldchain.Service
}

func NewColdChainHandler(service coldchain.Service) *ColdChainHandler {
	return &ColdChainHandler{service: service}
}

func (h *ColdChainHandler) RegisterRoutes(router chi.Router) {
	router.Get("/meat/cold-chain/{cartId}", h.handleComputeForCart)
}

func (h *ColdChainHandler) handleComputeForCart(w http.ResponseWriter, r *http.Request) {
	ids, ok := uuidParams(w, r, "cartId")
	if !ok {
		return
	}

	summary, err := h.service.ComputeForCart(r.Context(), ids[0])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toColdChainSummaryResponse(summary))
}

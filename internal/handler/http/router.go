package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

type RouterConfig struct {
	CORSOrigin string
}

// NewRouter mounts every registrar under /api next to the /health probe.
func NewRouter(cfg RouterConfig, registrars ...RouteRegistrar) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(log.Logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	router.Use(middleware.SetHeader("X-Frame-Options", "SAMEORIGIN"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestSize(maxBodyBytes))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	router.Route("/api", func(api chi.Router) {
		for _, reg := range registrars {
			reg.RegisterRoutes(api)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})

	return router
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/marketfresh/internal/cart"
	"github.com/vasiliy-maslov/marketfresh/internal/coldchain"
	"github.com/vasiliy-maslov/marketfresh/internal/config"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
	"github.com/vasiliy-maslov/marketfresh/internal/events"
	apihttp "github.com/vasiliy-maslov/marketfresh/internal/handler/http"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
	"github.com/vasiliy-maslov/marketfresh/internal/payment"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.App)
	log.Info().Msg("marketfresh starting...")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	pg, err := db.New(startupCtx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := db.Migrate(cfg.Postgres.MigrateURL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	publisher := events.New(cfg.Kafka)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}()

	now := time.Now

	productRepo := product.NewRepository(pg)
	cartRepo := cart.NewRepository(pg)
	orderRepo := order.NewRepository(pg)
	paymentRepo := payment.NewRepository(pg)

	productSvc := product.NewService(productRepo, pg, now)
	cartSvc := cart.NewService(cartRepo, productRepo, pg, now)
	coldChainSvc := coldchain.NewService(cartSvc, productRepo)
	orderSvc := order.NewService(orderRepo, cartRepo, productRepo, pg, publisher, now)
	paymentSvc := payment.NewService(paymentRepo, orderRepo, pg, publisher, cfg.App.PaymentProvider, now)

	if cfg.App.SeedDemoData {
		seeded, err := productSvc.SeedIfEmpty(startupCtx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo catalog")
		}
		log.Info().Bool("seeded", seeded).Msg("Demo catalog checked")
	}

	router := apihttp.NewRouter(
		apihttp.RouterConfig{CORSOrigin: cfg.App.CORSOrigin},
		apihttp.NewProductHandler(productSvc),
		apihttp.NewCartHandler(cartSvc),
		apihttp.NewColdChainHandler(coldChainSvc),
		apihttp.NewOrderHandler(orderSvc),
		apihttp.NewPaymentHandler(paymentSvc, orderSvc),
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("marketfresh stopped gracefully")
}

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.Name).Logger()
}

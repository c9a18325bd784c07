package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/config"
	"github.com/stemsi/exstem-variability/internal/database"
	"github.com/stemsi/exstem-variability/internal/handler"
	"github.com/stemsi/exstem-variability/internal/logger"
	"github.com/stemsi/exstem-variability/internal/repository"
	"github.com/stemsi/exstem-variability/internal/router"
	"github.com/stemsi/exstem-variability/internal/service"
	"github.com/stemsi/exstem-variability/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem Variability")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to MongoDB (Staging + Production) ─────────────────────
	mongoClients, err := database.NewMongoClients(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClients.Disconnect(context.Background(), log)

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	generationRepo := repository.NewGenerationRepository(mongoClients.Databases())

	// ─── Initialize Services ──────────────────────────────────────────
	generationService := service.NewGenerationService(generationRepo, log)
	variabilityService := service.NewVariabilityService(generationRepo, rdb, cfg.MetricsCacheTTL, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Health:      handler.NewHealthHandler(generationRepo, rdb),
		Generation:  handler.NewGenerationHandler(generationService, log),
		Variability: handler.NewVariabilityHandler(variabilityService, log),
		Serde:       handler.NewSerdeHandler(),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r, limiter := router.SetupRouter(handlers, cfg)
	defer limiter.Stop()

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jimmyjeon420-png/baln-sub000/internal/config"
	"github.com/jimmyjeon420-png/baln-sub000/internal/database"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/classification"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/correlation"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/drift"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/health"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/settings"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/tax"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/validation"
	"github.com/jimmyjeon420-png/baln-sub000/internal/server"
	"github.com/jimmyjeon420-png/baln-sub000/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting baln portfolio service")

	// Initialize database
	db, err := database.New(database.Config{
		Path: cfg.ConfigDBPath(),
		Name: "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	settingsRepo, err := settings.NewRepository(db.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize settings repository")
	}

	// Wire the scoring engines
	classifier := classification.NewDefault()
	corrModel := correlation.NewDefault()

	healthEngine := health.NewEngine(classifier, corrModel, health.Config{}, log)

	tolerance := drift.DefaultTolerancePP
	if raw := settingsRepo.Get("drift_tolerance_pp", ""); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			tolerance = parsed
		}
	}
	driftCalc := drift.NewCalculator(classifier, tolerance, log)

	taxCalc := tax.NewDefaultCalculator(log)
	validator := validation.New(validation.DefaultConfig(), log)

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Health:    healthEngine,
		Drift:     driftCalc,
		Tax:       taxCalc,
		Validator: validator,
		Settings:  settingsRepo,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

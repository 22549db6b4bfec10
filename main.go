package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fintrack/fintrack-be/internal/api"
	"github.com/fintrack/fintrack-be/internal/auth"
	"github.com/fintrack/fintrack-be/internal/config"
	"github.com/fintrack/fintrack-be/internal/database"
	"github.com/fintrack/fintrack-be/internal/logger"
	"github.com/fintrack/fintrack-be/internal/monitoring"
	"github.com/fintrack/fintrack-be/internal/services"
	"github.com/fintrack/fintrack-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the change-feed hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	authenticator := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db, hub)
	budgetService := services.NewBudgetService(db, hub)

	// Optional budget rollover job
	var rollover *monitoring.Rollover
	if cfg.RolloverCron != "" {
		rollover, err = monitoring.NewRollover(budgetService, cfg.RolloverCron)
		if err != nil {
			log.Fatal().Err(err).Str("cron", cfg.RolloverCron).Msg("Invalid BUDGET_ROLLOVER expression")
		}
		go rollover.Run()
	}

	// Set up router
	router := api.NewRouter(authenticator, hub, userService, transactionService, budgetService, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if rollover != nil {
		rollover.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// Command api is the CKPL ingest report server. It serves the position
// audit and CSV duplicate/preview checks to the admin page; it never
// writes to the store.
//
// Usage:
//
//	ckpl-api
//	API_PORT=8080 ckpl-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ckpl/auction-ingest/internal/api"
	"github.com/ckpl/auction-ingest/internal/config"
	"github.com/ckpl/auction-ingest/internal/store"
)

func main() {
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Load .env.local, then .env, if present
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logger.Warn("Ignoring invalid LOG_LEVEL", "value", cfg.LogLevel)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to store
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Create router
	router := api.NewRouter(st, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting CKPL report API", "addr", addr, "postgres", cfg.UsesPostgres())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

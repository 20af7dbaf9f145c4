// Command server runs the Crimes Against Foodies API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodcrimes/internal/config"
	"foodcrimes/internal/middleware"
	"foodcrimes/internal/observability"
	"foodcrimes/internal/scheduler"
	"foodcrimes/internal/server"

	"github.com/joho/godotenv"
)

// @title Crimes Against Foodies API
// @version 1.0
// @description Catalog, suggestion moderation and daily generated food image API.

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.basic BasicAuth

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "foodcrimes-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if cfg.DailyScheduleEnable {
		sched, err := scheduler.New(srv.DailyImages(), cfg.DailyRunAt, cfg.Location())
		if err != nil {
			log.Fatalf("Invalid DAILY_IMAGE_RUN_AT: %v", err)
		}
		sched.Start(ctx)
		middleware.Logger.Info("Daily image scheduler started", "run_at", cfg.DailyRunAt, "timezone", cfg.Location().String())
	}

	go func() {
		<-ctx.Done()
		middleware.Logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			middleware.Logger.Error("Tracing shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		middleware.Logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

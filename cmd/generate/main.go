// Command generate runs the daily image job once, for cron-style deployments.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"foodcrimes/internal/config"
	"foodcrimes/internal/middleware"
	"foodcrimes/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() { _ = srv.Shutdown(context.Background()) }()

	res, err := srv.DailyImages().Run(ctx)
	if err != nil {
		stop()
		log.Fatalf("Daily image job failed: %v", err)
	}
	if res.Created {
		log.Printf("Created %s: %s (%s)", res.Image.GenerationDate, res.Image.FoodCombination, res.Image.PublicURL)
	} else {
		log.Printf("Image for %s already exists: %s", res.Image.GenerationDate, res.Image.PublicURL)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tfea/adapters/api"
	"tfea/internal/config"
	"tfea/internal/container"
)

func main() {
	// Load application configuration (.env is optional)
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Attach run storage when DATABASE_URL is set
	if err := appContainer.ConnectDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	server := api.NewServer(appContainer.EnrichmentService, api.Options{
		DefaultSeed:     appConfig.Engine.Seed,
		MaxBodyBytes:    appConfig.Server.MaxBodyBytes,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout,
	}, appContainer.Logger)

	log.Printf("🚀 Starting TFEA server on port %s", appConfig.Server.Port)
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homescout/config"
	"homescout/inventory"
	"homescout/server"
	"homescout/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Inventory persistence is constructed once here and shared by every
	// session.
	var writer inventory.Writer
	if cfg.BigQueryProject != "" {
		bq, err := inventory.NewBigQueryWriter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, cfg.BigQueryTable)
		if err != nil {
			log.Fatalf("Failed to create BigQuery writer: %v", err)
		}
		writer = bq
		log.Printf("📦 Inventory persistence: %s.%s.%s", cfg.BigQueryProject, cfg.BigQueryDataset, cfg.BigQueryTable)
	} else {
		log.Println("📦 Inventory persistence disabled (session-only)")
	}

	// Create session manager
	sessionManager, err := session.NewManager(cfg, writer)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	// Start cleanup routine
	go sessionManager.StartCleanupRoutine(ctx)

	srv := server.NewServer(cfg, sessionManager)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}

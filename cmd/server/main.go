package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wstorey/web615-lab9/config"
	"github.com/wstorey/web615-lab9/internal/api"
	"github.com/wstorey/web615-lab9/internal/auth"
	"github.com/wstorey/web615-lab9/internal/storage"
	"github.com/wstorey/web615-lab9/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewServerLogger(cfg.Logging.Dir, "server")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	// Initialize storage
	store, err := openStore(cfg)
	if err != nil {
		logger.LogError("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize database tables
	if err := store.Initialize(); err != nil {
		logger.LogError("Failed to initialize database tables: %v", err)
		os.Exit(1)
	}

	authService := auth.NewService(store, cfg.Auth.BcryptCost, cfg.GetSessionTTL(), cfg.GetRememberTTL())

	// Initialize API server
	server := api.NewServer(cfg.Server.Port, store, authService)

	go func() {
		logger.LogInfo("Starting API server on port %d (database driver: %s)", cfg.Server.Port, cfg.Database.Driver)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	waitForShutdown(server, logger)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Database.Driver == "postgres" {
		return storage.NewPostgresStore(cfg.Database.URL)
	}
	return storage.NewSQLiteStore(cfg.Database.URL)
}

func waitForShutdown(server *api.Server, logger *utils.ServerLogger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.LogInfo("Shutting down...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Error shutting down server: %v", err)
	}
	logger.LogInfo("Server shut down gracefully")
}

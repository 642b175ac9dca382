package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paintgalaxy/server/internal/config"
	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/logger"
	"github.com/paintgalaxy/server/internal/namefilter"
	"github.com/paintgalaxy/server/internal/scenario"
	"github.com/paintgalaxy/server/internal/server"
)

func main() {
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	envFile := flag.String("env", ".env", "Path to .env file (skipped if missing)")
	noArchive := flag.Bool("no-archive", false, "Run without the scenario archive")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	// Initialize logger first (before any logging)
	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("Starting paintgalaxy server")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Info("Galaxy settings loaded",
		"canvas", cfg.Galaxy.Bounds,
		"fe_spawn_radius", cfg.Galaxy.FallenEmpireSpawnRadius,
		"size_tiers", len(cfg.Galaxy.Tiers))

	var db *database.Database
	var store scenario.Store
	var archive server.Archive
	if !*noArchive {
		db, err = database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		store, archive = db, db
		logger.Info("Scenario archive initialized", "driver", cfg.Database.Driver)
	}

	service := scenario.NewService(cfg.Galaxy, store)
	service.SetNameFilter(namefilter.New(&cfg.NameFilter))
	srv := server.NewServer(&cfg.Server, service, archive)

	origins := cfg.Server.WebSocket.AllowedOrigins
	if len(origins) == 0 {
		logger.Info("CORS policy", "mode", "same-origin")
	} else if len(origins) == 1 && origins[0] == "*" {
		logger.Warning("CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("CORS policy", "allowed_origins", origins)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown did not complete cleanly", "error", err)
	}
	logger.Info("Server stopped")
}

package main

import (
	"log"

	"storeadmin/internal/api"
	"storeadmin/internal/config"
	"storeadmin/internal/database"
	"storeadmin/internal/events"
	"storeadmin/internal/kvstore"
	"storeadmin/internal/logger"
	"storeadmin/internal/registry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize registry with status events going to Kafka
	reg := registry.New(kvstore.NewGormStore(db.DB), logger)
	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()
	reg.SetStatusSink(publisher)

	// Initialize API server
	server := api.New(cfg, logger, db, reg)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

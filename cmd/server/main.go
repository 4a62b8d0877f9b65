package main

import (
	"context"

	"summarizer/internal/auth"
	"summarizer/internal/config"
	"summarizer/internal/credstore"
	"summarizer/internal/ingest"
	"summarizer/internal/server"
	"summarizer/internal/warehouse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize warehouse connection
	db, err := warehouse.New(cfg.DatabaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Warehouse connection failed")
		logger.Info().Msg("Starting server without warehouse connection")
	} else {
		logger.Info().Msg("Warehouse connection established successfully")
	}

	// Credential blob store for the active profile
	store, err := credstore.FromConfig(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize credential store")
	}

	// The grant flow is mounted on this server's /oauth2callback route
	flow := auth.NewCallbackFlow(logger)
	mgr := auth.NewManager(
		auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURL),
		store, flow, logger)

	fetcher := ingest.NewFetcher(mgr, warehouse.NewClient(db, logger), cfg, logger)

	// Create and initialize server
	srv := server.New(cfg, db, logger, fetcher, flow)
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}

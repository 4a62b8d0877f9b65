// Command refresh-token forces one access-token refresh so the persisted
// credential blob stays current between scheduled runs.
package main

import (
	"context"

	"summarizer/internal/auth"
	"summarizer/internal/config"
	"summarizer/internal/credstore"
)

func main() {
	cfg := config.Load()
	logger := cfg.SetupLogger()
	ctx := context.Background()

	logger.Info().Msg("Attempting to refresh access token")

	store, err := credstore.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize credential store")
	}

	// With no stored credential this blocks on a standalone callback listener
	// until the operator completes the consent screen.
	flow := auth.NewStandaloneFlow(":"+cfg.Port, logger)
	mgr := auth.NewManager(
		auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURL),
		store, flow, logger)

	if _, err := mgr.Client(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to refresh access token")
	}
	logger.Info().Msg("Access token refreshed successfully")
}

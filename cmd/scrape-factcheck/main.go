// Command scrape-factcheck crawls the fact-check listing page once and
// appends the cards to the scraped_url table.
package main

import (
	"context"

	"summarizer/internal/config"
	"summarizer/internal/factcheck"
	"summarizer/internal/warehouse"
)

func main() {
	cfg := config.Load()
	logger := cfg.SetupLogger()
	ctx := context.Background()

	db, err := warehouse.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Warehouse connection failed")
	}

	scraper := factcheck.New(warehouse.NewClient(db, logger), cfg.FactCheckURL, logger)
	if err := scraper.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Fact-check crawl failed")
	}
}

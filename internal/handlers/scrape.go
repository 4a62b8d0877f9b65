package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"summarizer/internal/ingest"
)

// ScrapeEmailsHandler runs the full auth+fetch+store cycle synchronously and
// answers once all messages of this invocation have been processed.
// @Summary Scrape newsletter emails
// @Description Authenticates against Gmail, fetches labeled messages from the trailing week and inserts them as raw warehouse rows
// @Tags scraping
// @Produce plain
// @Success 200 {string} string "completion message"
// @Failure 500 {string} string "error message"
// @Router /scrape-emails [get]
func ScrapeEmailsHandler(fetcher *ingest.Fetcher, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger.Info().Msg("Starting email scraping")

		if err := fetcher.Run(c.Request().Context()); err != nil {
			logger.Error().Err(err).Msg("Email scraping failed")
			return c.String(http.StatusInternalServerError, fmt.Sprintf("Email scraping failed: %v", err))
		}

		return c.String(http.StatusOK, "Email scraping completed and data inserted into the warehouse")
	}
}

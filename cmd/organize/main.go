// Command organize re-reads the week's raw newsletter rows, partitions each
// body into issues through the assistant and writes the summary rows back.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/sashabaranov/go-openai"

	"summarizer/internal/assistant"
	"summarizer/internal/config"
	"summarizer/internal/warehouse"
)

func main() {
	provision := flag.Bool("provision", false, "create the assistant once and print its id")
	flag.Parse()

	cfg := config.Load()
	logger := cfg.SetupLogger()
	ctx := context.Background()

	client := openai.NewClient(cfg.OpenAIKey)

	if *provision {
		id, err := assistant.Provision(ctx, client)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create assistant")
		}
		logger.Info().Str("assistant_id", id).Msg("Assistant created")
		return
	}

	if cfg.AssistantID == "" {
		logger.Fatal().Msg("ASSISTANT_ID not configured")
	}

	db, err := warehouse.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Warehouse connection failed")
	}
	wh := warehouse.NewClient(db, logger)

	orch := assistant.New(client, cfg.AssistantID,
		time.Duration(cfg.PollIntervalSeconds)*time.Second, logger)

	rows, err := wh.WeeklyRaw(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to fetch raw emails")
	}
	logger.Info().Int("count", len(rows)).Msg("Fetched emails")

	// One thread-create+poll+parse cycle completes before the next begins;
	// a dropped item is already logged by the orchestrator.
	for _, row := range rows {
		result := orch.Summarize(ctx, row.EmailContent)
		if result == nil {
			continue
		}
		if err := wh.InsertSummaries(ctx, row.ID, result.Issues); err != nil {
			logger.Error().Err(err).Str("raw_id", row.ID).Msg("Failed to insert summary rows")
			continue
		}
		logger.Info().Str("raw_id", row.ID).Int("issues", len(result.Issues)).Msg("Summary inserted")
	}
}

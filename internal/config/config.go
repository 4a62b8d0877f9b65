package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port        string
	Profile     string // "dev" or "prod"
	DatabaseURL string // Warehouse database (MySQL or PostgreSQL)
	Version     string
	LogLevel    string

	// Google OAuth / Gmail
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
	NewsletterLabel    string // Gmail label the fetcher queries for
	MaxMessages        int64  // First-page listing size; further pages are not fetched

	// Credential blob storage
	TokenBucket string // GCS bucket holding the token blob (prod)
	TokenObject string // Object path of the token blob inside the bucket
	TokenFile   string // Local token file (dev)

	// OpenAI assistant
	OpenAIKey           string
	AssistantID         string // Pre-provisioned assistant identity, never created at runtime
	PollIntervalSeconds int    // Run-status poll interval

	// Scraping
	ScrapeSchedule string // Cron expression for the weekly email scrape
	FactCheckURL   string // Fact-check listing page crawled by the sibling scraper
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Profile decides where the credential blob lives (default: prod -> GCS)
	profile := getEnv("PROFILE", "prod")
	log.Println("Current profile: " + profile)

	config := &Config{
		Port:                getEnv("PORT", "3000"),
		Profile:             profile,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Version:             getEnv("VERSION", "1.0.0"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:         getEnv("OAUTH_REDIRECT_URL", "http://localhost:3000/oauth2callback"),
		NewsletterLabel:     getEnv("NEWSLETTER_LABEL", "newsletter"),
		MaxMessages:         int64(getEnvInt("MAX_MESSAGES", 5)),
		TokenBucket:         getEnv("TOKEN_BUCKET", "team-ask-storage"),
		TokenObject:         getEnv("TOKEN_OBJECT", "proj-newsletter-scraper/gmail-api-token/token.json"),
		TokenFile:           getEnv("TOKEN_FILE", "./token.json"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		AssistantID:         os.Getenv("ASSISTANT_ID"),
		PollIntervalSeconds: getEnvInt("ASSISTANT_POLL_INTERVAL_SECONDS", 15),
		ScrapeSchedule:      getEnv("SCRAPE_SCHEDULE", "0 9 * * 1"),
		FactCheckURL:        getEnv("FACTCHECK_URL", "https://news.naver.com/factcheck/main"),
	}

	return config
}

// IsDev reports whether the dev profile is active
func (c *Config) IsDev() bool {
	return c.Profile == "dev"
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "summarizer").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}

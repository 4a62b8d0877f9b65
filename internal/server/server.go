package server

import (
	"context"
	"time"

	"summarizer/internal/auth"
	"summarizer/internal/config"
	"summarizer/internal/handlers"
	"summarizer/internal/ingest"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the application server
type Server struct {
	echo    *echo.Echo
	db      *sqlx.DB
	config  *config.Config
	logger  zerolog.Logger
	fetcher *ingest.Fetcher
	flow    *auth.CallbackFlow
	cron    *cron.Cron
}

// New creates a new server instance
func New(cfg *config.Config, db *sqlx.DB, logger zerolog.Logger, fetcher *ingest.Fetcher, flow *auth.CallbackFlow) *Server {
	return &Server{
		config:  cfg,
		db:      db,
		logger:  logger,
		fetcher: fetcher,
		flow:    flow,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware, routes and the
// weekly scrape schedule
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	s.setupRoutes()
	s.setupSchedule()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.db))

	// OAuth callback resolves the pending interactive grant, if any
	s.echo.GET("/oauth2callback", s.flow.Callback)

	// Manual trigger for the full auth+fetch+store cycle
	s.echo.GET("/scrape-emails", handlers.ScrapeEmailsHandler(s.fetcher, s.logger))
}

// setupSchedule registers the weekly email scraping job
func (s *Server) setupSchedule() {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.config.ScrapeSchedule, func() {
		s.logger.Info().Msg("Running scheduled email scraping job")
		if err := s.fetcher.Run(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled email scraping failed")
		}
	})
	if err != nil {
		s.logger.Error().Err(err).Str("schedule", s.config.ScrapeSchedule).Msg("Failed to register scrape schedule")
	}
}

// Start starts the scheduler and the HTTP server
func (s *Server) Start() error {
	s.cron.Start()
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/triptech/fleetd/internal/config"
	"github.com/triptech/fleetd/internal/db"
)

// App holds the application state.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	server *http.Server
}

// New creates and initializes a new application instance.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	setupLogger(cfg.LogLevel)

	log.Info().Msg("Initializing fleetd")
	log.Info().Interface("config", cfg.RedactedValues()).Msg("Configuration loaded")

	log.Info().Msg("Connecting to database...")
	pool, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("Database connection established")

	if cfg.IsDev() {
		log.Info().Msg("Development mode: running migrations automatically")
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Info().Msg("Production mode: migrations must be run manually")
	}

	router := NewRouter(pool, cfg)

	app := &App{
		Config: cfg,
		DB:     pool,
		Router: router,
	}

	log.Info().Msg("Application initialized successfully")
	return app, nil
}

// Start starts the HTTP server and blocks until it exits.
func (a *App) Start() error {
	addr := a.Config.HTTPAddr
	log.Info().Str("addr", addr).Msg("Starting HTTP server")

	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a.server.ListenAndServe()
}

// Shutdown drains in-flight requests and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down application")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
	}

	if a.DB != nil {
		log.Info().Msg("Closing database connection")
		a.DB.Close()
	}

	return nil
}

// setupLogger configures the global logger.
func setupLogger(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Debug().Str("level", level).Msg("Logger configured")
}

// Package main is the entry point for the Seaside Beacon API server.
//
// It loads configuration, connects the database pool, builds the weather,
// insight, and email clients, wires the HTTP chassis (middleware, routing,
// health checks), and starts listening for requests.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"seasidebeacon/internal/api/handlers"
	"seasidebeacon/internal/config"
	"seasidebeacon/internal/core"
	"seasidebeacon/internal/db"
	"seasidebeacon/internal/external"
	"seasidebeacon/internal/insights"
	"seasidebeacon/internal/notifications/email"
	"seasidebeacon/internal/prediction"
	"seasidebeacon/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("seaside beacon API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := newDatabasePool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database pool: %w", err)
	}

	// Weather provider.
	weatherClient := external.NewAccuWeatherClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		external.AccuWeatherClientConfig{
			APIKey:  cfg.Weather.APIKey.Unmask(),
			BaseURL: cfg.Weather.BaseURL,
			Logger:  logger,
		},
	)
	predictionSvc := prediction.NewService(weatherClient, external.SourceName, logger)

	// Insight generation. Without a Gemini key the generator runs purely
	// rule-based, which is a valid configuration.
	var textGen insights.TextGenerator
	if cfg.Insight.GeminiAPIKey.IsSet() {
		textGen = external.NewGeminiClient(
			&http.Client{Timeout: cfg.Insight.Timeout},
			external.GeminiClientConfig{
				APIKey:  cfg.Insight.GeminiAPIKey.Unmask(),
				Model:   cfg.Insight.Model,
				BaseURL: cfg.Insight.BaseURL,
				Logger:  logger,
			},
		)
	} else {
		logger.Info("no generative API key configured, using rule-based insights only")
	}
	insightGen := insights.NewGenerator(textGen, logger)

	mailSvc, err := newEmailService(cfg, logger)
	if err != nil {
		pool.Close()
		return err
	}

	repo := db.NewSubscriberRepository(pool, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.RegisterCloser(func() error {
		pool.Close()
		return nil
	})
	srv.HealthProbes = append(srv.HealthProbes, &databaseProbe{pool: pool})

	predictionHandler := handlers.NewPredictionHandler(predictionSvc, insightGen, types.RealClock{}, logger)

	// A nil *email.Service must stay a nil interface so the handler skips
	// welcome mail entirely.
	var welcomeMailer handlers.WelcomeMailer
	if mailSvc != nil {
		welcomeMailer = mailSvc
	}
	subscribeHandler := handlers.NewSubscribeHandler(repo, welcomeMailer, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { predictionHandler.RegisterRoutes(r) },
		func(r chi.Router) { subscribeHandler.RegisterRoutes(r) },
	)

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// newDatabasePool builds a pgx connection pool from the database config and
// verifies connectivity before returning.
func newDatabasePool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// newEmailService builds the transactional email service, or returns nil
// when delivery is disabled or unconfigured.
func newEmailService(cfg *config.Config, logger *slog.Logger) (*email.Service, error) {
	if !cfg.Email.Enabled || !cfg.Email.BrevoAPIKey.IsSet() {
		logger.Info("email delivery disabled")
		return nil, nil
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}

	provider := external.NewBrevoClient(
		&http.Client{Timeout: 15 * time.Second},
		external.BrevoClientConfig{
			APIKey:      cfg.Email.BrevoAPIKey.Unmask(),
			BaseURL:     cfg.Email.BrevoBaseURL,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			Logger:      logger,
		},
	)

	return email.NewService(provider, renderer, logger), nil
}

// databaseProbe reports database connectivity for the health endpoint.
type databaseProbe struct {
	pool *pgxpool.Pool
}

func (p *databaseProbe) Name() string { return "database" }

func (p *databaseProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// runHTTPServer starts the server in standard HTTP mode with graceful
// shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log
// level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}

// Package main is the entry point for the daily digest worker.
//
// The worker polls the clock and, once per IST day at the configured send
// hour, fetches a prediction per distinct preferred beach and emails every
// active subscriber. It shares the prediction, insight, and email stacks
// with the API server but runs no HTTP listener.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"seasidebeacon/internal/config"
	"seasidebeacon/internal/db"
	"seasidebeacon/internal/external"
	"seasidebeacon/internal/insights"
	"seasidebeacon/internal/notifications/email"
	"seasidebeacon/internal/prediction"
	"seasidebeacon/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("digest worker starting",
		"environment", cfg.Environment,
		"send_hour_ist", cfg.Digest.SendHourIST,
	)

	// The worker exists solely to deliver email; refusing to start beats
	// silently polling forever.
	if !cfg.Email.Enabled || !cfg.Email.BrevoAPIKey.IsSet() {
		return fmt.Errorf("email delivery must be enabled and configured for the digest worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newDatabasePool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database pool: %w", err)
	}
	defer pool.Close()

	weatherClient := external.NewAccuWeatherClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		external.AccuWeatherClientConfig{
			APIKey:  cfg.Weather.APIKey.Unmask(),
			BaseURL: cfg.Weather.BaseURL,
			Logger:  logger,
		},
	)
	predictionSvc := prediction.NewService(weatherClient, external.SourceName, logger)

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
	}
	insightGen := insights.NewGenerator(textGen, logger)

	renderer, err := email.NewRenderer()
	if err != nil {
		return fmt.Errorf("parsing email templates: %w", err)
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
	mailSvc := email.NewService(provider, renderer, logger)

	repo := db.NewSubscriberRepository(pool, logger)

	dispatcher := scheduler.NewDigestDispatcher(
		repo,
		predictionSvc,
		insightGen,
		mailSvc,
		nil, // real clock
		scheduler.Config{
			SendHourIST: cfg.Digest.SendHourIST,
			Concurrency: cfg.Digest.Concurrency,
			PollEvery:   cfg.Digest.PollEvery,
		},
		logger,
	)

	if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dispatch loop: %w", err)
	}

	logger.Info("digest worker stopped cleanly")
	return nil
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

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

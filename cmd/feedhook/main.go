package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deusflow/feedhook/internal/app"
	"github.com/deusflow/feedhook/internal/config"
	"github.com/deusflow/feedhook/internal/discord"
	"github.com/deusflow/feedhook/internal/feeds"
	"github.com/deusflow/feedhook/internal/logger"
	"github.com/deusflow/feedhook/internal/metrics"
	"github.com/deusflow/feedhook/internal/monitor"
	"github.com/deusflow/feedhook/internal/probe"
	"github.com/deusflow/feedhook/internal/ratelimit"
	"github.com/deusflow/feedhook/internal/rss"
	"github.com/deusflow/feedhook/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Feed forwarder failed", "error", err)
		os.Exit(1)
	}
}

// run wires the forwarder and blocks until it stops. Errors are returned
// rather than exiting so deferred cleanup, including the log file, runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCloser := logger.Init(logger.Options{
		Debug:      cfg.Debug,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()

	feedList := feeds.Defaults()
	if cfg.FeedsConfigPath != "" {
		feedList, err = feeds.Load(cfg.FeedsConfigPath)
		if err != nil {
			return fmt.Errorf("load feed list %s: %w", cfg.FeedsConfigPath, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, storage.Options{
		Kind:        cfg.StateBackend,
		FilePath:    cfg.StateFile,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		Redis: storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		},
	})
	if err != nil {
		return fmt.Errorf("open %s state backend: %w", cfg.StateBackend, err)
	}
	store := storage.NewStore(backend)
	defer store.Close()

	validator := probe.New(&http.Client{Timeout: cfg.ImageTimeout}, cfg.UserAgent, cfg.ImageCacheTTL)
	defer validator.Close()

	m := metrics.New()

	if cfg.Monitoring {
		go func() {
			if err := monitor.Serve(ctx, cfg.MonitoringPort, monitor.NewRouter(m, store)); err != nil {
				slog.Error("Monitoring server error", "error", err)
			}
		}()
	}

	poller := app.New(app.Options{
		Feeds:     feedList,
		Fetcher:   rss.NewFetcher(&http.Client{Timeout: cfg.FetchTimeout}, cfg.UserAgent, cfg.FetchRetryAttempts),
		Validator: validator,
		Notifier:  discord.NewClient(&http.Client{Timeout: cfg.WebhookTimeout}, ratelimit.NewPacer(cfg.WebhookRatePerMin, 5)),
		Store:     store,
		Metrics:   m,
		Interval:  cfg.PollInterval,
	})

	return poller.Run(ctx)
}

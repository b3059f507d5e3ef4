package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/TurtIeSocks/account-manager/internal/config"
	"github.com/TurtIeSocks/account-manager/internal/ledger"
	"github.com/TurtIeSocks/account-manager/internal/metrics"
	"github.com/TurtIeSocks/account-manager/internal/notify"
	"github.com/TurtIeSocks/account-manager/internal/pipeline"
	"github.com/TurtIeSocks/account-manager/internal/source"
	"github.com/TurtIeSocks/account-manager/internal/stats"
	"github.com/TurtIeSocks/account-manager/internal/store/sqlstore"
	"github.com/TurtIeSocks/account-manager/internal/tracing"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func storeConfig(sc config.StoreConfig) sqlstore.Config {
	return sqlstore.Config{
		Driver:          sc.Driver,
		DSN:             sc.DSN,
		MaxOpenConns:    sc.MaxOpenConns,
		MaxIdleConns:    sc.MaxIdleConns,
		ConnMaxLifetime: sc.ConnMaxLifetime(),
	}
}

func main() {
	os.Exit(run())
}

// run holds setup and the pipeline pass so every deferred cleanup (store
// closes, ledger close, tracing shutdown) unwinds before the process
// exits, on failure as well as success.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	mode := "counter"
	if cfg.FileMode() {
		mode = "file"
	}
	logger.Info("starting account-manager",
		"mode", mode,
		"destinations", len(cfg.Destinations),
		"webhook_configured", cfg.WebhookURL != "",
	)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, "account-manager", cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	trackingDB, err := sqlstore.New(storeConfig(cfg.Tracking))
	if err != nil {
		logger.Error("failed to connect to tracking store", "error", err)
		return 1
	}
	defer closeStore(trackingDB, "tracking", logger)
	tracking := sqlstore.NewAccountRepo(trackingDB)

	destinations := make([]pipeline.Destination, 0, len(cfg.Destinations))
	for _, dc := range cfg.Destinations {
		db, err := sqlstore.New(storeConfig(dc.StoreConfig))
		if err != nil {
			logger.Error("failed to connect to destination store", "destination", dc.Name, "error", err)
			return 1
		}
		defer closeStore(db, dc.Name, logger)
		destinations = append(destinations, pipeline.Destination{
			Name:  dc.Name,
			Ratio: dc.Ratio,
			Repo:  sqlstore.NewAccountRepo(db),
		})
	}

	src, cleanup, err := buildSource(cfg, tracking, logger)
	if err != nil {
		logger.Error("failed to build account source", "error", err)
		return 1
	}
	defer cleanup()

	runner := pipeline.New(
		src,
		tracking,
		destinations,
		stats.NewRecorder(cfg.StatsPath()),
		notify.NewNotifier(cfg.WebhookURL),
		notify.NewReloader(cfg.ReloadURLs(), cfg.ReloadWindow.Hour, cfg.ReloadWindow.MaxMinute, logger),
		logger,
	)

	started := time.Now()
	rec, err := runner.Run(ctx)
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		logger.Error("run aborted", "error", err)
		return 1
	}
	metrics.RunsTotal.WithLabelValues("ok").Inc()

	logger.Info("run complete",
		"run_id", rec.RunID,
		"new_accounts", rec.NewAccounts,
		"new_thirties", rec.NewThirties,
		"duration", time.Since(started).String(),
	)
	return 0
}

// buildSource selects file mode when an ingest dir is configured,
// otherwise counter mode. The returned cleanup releases the ledger.
func buildSource(cfg *config.Config, tracking *sqlstore.AccountRepo, logger *slog.Logger) (source.Reader, func(), error) {
	if !cfg.FileMode() {
		reader, err := source.NewCounterReader(cfg.CounterPath(), tracking, logger)
		if err != nil {
			return nil, nil, err
		}
		return reader, func() {}, nil
	}

	var led ledger.Ledger
	if cfg.Ledger.RedisURL != "" {
		redisLedger, err := ledger.NewRedisLedger(cfg.Ledger.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		led = redisLedger
	} else {
		led = ledger.NewFileLedger(cfg.LedgerPath())
	}

	cleanup := func() {
		if err := led.Close(); err != nil {
			logger.Warn("ledger close error", "error", err)
		}
	}
	return source.NewFileReader(cfg.IngestDir, led, logger), cleanup, nil
}

func closeStore(db *sqlstore.DB, name string, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("store close error", "store", name, "error", err)
	}
}

package main

import (
	"time"

	"scadenze/internal/cli"
	"scadenze/internal/core"
	"scadenze/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting backfill-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	backfiller := services.NewBackfiller(repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Due payment backfill configured",
		"interval", cfg.BackfillInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	runBackfill := func(now time.Time) {
		payments, err := repo.ListPayments(ctx)
		if err != nil {
			logger.Error("Failed to list payments", "error", err)
			return
		}
		count, err := backfiller.GenerateDuePayments(ctx, payments, core.DateOf(now))
		if err != nil {
			logger.Error("Backfill run failed", "error", err, "created_before_failure", count)
			return
		}
		logger.Info("Backfill run complete", "entries_created", count, "payments_checked", len(payments))
	}

	// Run once on startup so a long downtime is recovered immediately.
	logger.Info("Running initial due payment backfill...")
	runBackfill(time.Now())

	go func() {
		ticker := time.NewTicker(cfg.BackfillInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Running periodic due payment backfill...")
				runBackfill(now)
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Backfill-worker stopped")
}

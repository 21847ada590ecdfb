// Command replayer drains a WAL directory into Postgres. Use it for a WAL
// left behind by a server that is no longer running; a live server replays
// its own WAL.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/V4T54L/causeway/internal/adapter/metrics"
	"github.com/V4T54L/causeway/internal/adapter/repository/postgres"
	"github.com/V4T54L/causeway/internal/adapter/repository/wal"
	"github.com/V4T54L/causeway/internal/pkg/config"
	"github.com/V4T54L/causeway/internal/pkg/logger"
	"github.com/V4T54L/causeway/internal/usecase"
)

const retryBackoff = 2 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting replayer", "wal_path", cfg.WALPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("failed to migrate postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	walRepo, err := wal.NewWALRepository(cfg.WALPath, cfg.WALSegmentSize, cfg.WALMaxDiskSize, log)
	if err != nil {
		log.Error("failed to open WAL", "error", err)
		os.Exit(1)
	}
	defer walRepo.Close()

	m := metrics.NewAnalyzerMetrics(prometheus.DefaultRegisterer)
	replay := usecase.NewReplayUseCase(walRepo, postgres.NewExecutionRepository(db, log), m, log, 5, retryBackoff)

	ticker := time.NewTicker(cfg.ReplayInterval)
	defer ticker.Stop()

Loop:
	for {
		count, err := replay.Replay(ctx)
		switch {
		case err != nil:
			log.Error("error replaying WAL", "error", err)
		case count == 0:
			if size, _ := walRepo.Size(); size > 0 {
				log.Warn("WAL holds only unreadable records", "size_bytes", size)
			}
			log.Info("nothing left to replay")
			break Loop
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Info("context cancelled, shutting down replayer")
			break Loop
		}
	}

	log.Info("replayer shut down gracefully")
}

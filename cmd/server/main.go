package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/V4T54L/causeway/internal/adapter/api"
	"github.com/V4T54L/causeway/internal/adapter/api/handler"
	"github.com/V4T54L/causeway/internal/adapter/metrics"
	"github.com/V4T54L/causeway/internal/adapter/pii"
	"github.com/V4T54L/causeway/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/causeway/internal/adapter/repository/redis"
	"github.com/V4T54L/causeway/internal/adapter/repository/wal"
	"github.com/V4T54L/causeway/internal/logparser"
	"github.com/V4T54L/causeway/internal/pkg/config"
	"github.com/V4T54L/causeway/internal/pkg/logger"
	"github.com/V4T54L/causeway/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

const (
	shutdownTimeout     = 10 * time.Second
	redisHealthInterval = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewAnalyzerMetrics(prometheus.DefaultRegisterer)

	// --- Database and Redis Connections ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Warn("could not migrate postgres, uploads will go to the WAL until it is reachable", "error", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("could not connect to redis, views will not be cached", "error", err)
	}

	// --- Repositories ---
	walRepo, err := wal.NewWALRepository(cfg.WALPath, cfg.WALSegmentSize, cfg.WALMaxDiskSize, logger)
	if err != nil {
		logger.Error("failed to initialize WAL repository", "error", err)
		os.Exit(1)
	}
	defer walRepo.Close()

	executionRepo := postgres.NewExecutionRepository(db, logger)
	apiKeyRepo := postgres.NewAPIKeyRepository(db, logger, cfg.APIKeyCacheTTL, m)
	viewCache := redisrepo.NewViewCache(redisClient, cfg.CacheTTL, logger)

	// --- Use Cases ---
	fieldPattern, err := logparser.CompileFieldPattern(cfg.FieldPattern)
	if err != nil {
		logger.Error("invalid FIELD_PATTERN", "error", err)
		os.Exit(1)
	}
	delimiter, err := logparser.CompileDelimiter(cfg.ExecutionDelimiter)
	if err != nil {
		logger.Error("invalid EXECUTION_DELIMITER", "error", err)
		os.Exit(1)
	}
	pipeline := usecase.NewPipeline(logparser.New(logparser.WithFieldPattern(fieldPattern), logparser.WithDelimiter(delimiter)), cfg.ValidateClocks)
	redactor := pii.NewRedactor(cfg.RedactFields, logger)

	ingestUseCase := usecase.NewIngestExecutionUseCase(executionRepo, walRepo, pipeline, redactor, m, logger)
	viewUseCase := usecase.NewAnalyzeViewUseCase(executionRepo, viewCache, pipeline, m, logger)
	replayUseCase := usecase.NewReplayUseCase(walRepo, executionRepo, m, logger, 0, 0)

	// --- Servers ---
	server := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      api.NewRouter(cfg, logger, apiKeyRepo, ingestUseCase, viewUseCase),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	checks := map[string]handler.HealthCheck{
		"postgres": db.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	adminHandler := handler.NewAdminHandler(checks, replayUseCase, walRepo, logger)
	adminServer := &http.Server{
		Addr:    cfg.AdminAddr(),
		Handler: api.NewAdminRouter(adminHandler, prometheus.DefaultGatherer, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr)
		return listen(server)
	})
	g.Go(func() error {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		return listen(adminServer)
	})
	g.Go(func() error {
		viewCache.StartHealthCheck(gctx, redisHealthInterval)
		return nil
	})
	g.Go(func() error {
		replayLoop(gctx, replayUseCase, cfg.ReplayInterval, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(server.Shutdown(shutdownCtx), adminServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("servers shut down gracefully")
}

func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// replayLoop drains the WAL every interval until ctx is done.
func replayLoop(ctx context.Context, uc *usecase.ReplayUseCase, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.Replay(ctx); err != nil {
				logger.Warn("wal replay failed, will retry", "error", err)
			}
		}
	}
}

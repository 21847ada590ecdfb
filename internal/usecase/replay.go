package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/V4T54L/causeway/internal/adapter/metrics"
	"github.com/V4T54L/causeway/internal/domain"
)

const (
	defaultBatchSize    = 100
	defaultRetryCount   = 3
	defaultRetryBackoff = 1 * time.Second
)

// ReplayUseCase drains executions parked in the WAL into the repository.
type ReplayUseCase struct {
	wal          domain.WALRepository
	repo         domain.ExecutionRepository
	metrics      *metrics.AnalyzerMetrics
	logger       *slog.Logger
	batchSize    int
	retryCount   int
	retryBackoff time.Duration
}

// NewReplayUseCase creates a replayer. Non-positive retry settings fall back
// to the defaults.
func NewReplayUseCase(wal domain.WALRepository, repo domain.ExecutionRepository, m *metrics.AnalyzerMetrics, logger *slog.Logger, retryCount int, retryBackoff time.Duration) *ReplayUseCase {
	if retryCount <= 0 {
		retryCount = defaultRetryCount
	}
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	return &ReplayUseCase{
		wal:          wal,
		repo:         repo,
		metrics:      m,
		logger:       logger.With("component", "replay"),
		batchSize:    defaultBatchSize,
		retryCount:   retryCount,
		retryBackoff: retryBackoff,
	}
}

// Replay writes every WAL entry to the repository in batches and truncates
// the WAL once all of them are stored. On failure the WAL is left intact;
// batches already written are saved again on the next run, which the
// repository tolerates.
func (uc *ReplayUseCase) Replay(ctx context.Context) (int, error) {
	batch := make([]domain.Execution, 0, uc.batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := uc.writeWithRetry(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	err := uc.wal.Replay(ctx, func(exec domain.Execution) error {
		batch = append(batch, exec)
		if len(batch) >= uc.batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		uc.logger.Error("failed to replay WAL", "error", err, "replayed", total)
		return total, fmt.Errorf("replay wal: %w", err)
	}

	if total == 0 {
		return 0, nil
	}

	if err := uc.wal.Truncate(ctx); err != nil {
		uc.logger.Error("failed to truncate WAL after replay", "error", err)
		return total, fmt.Errorf("truncate wal: %w", err)
	}
	uc.metrics.WALReplayed.Add(float64(total))
	uc.metrics.WALActive.Set(0)
	uc.logger.Info("replayed executions from WAL", "count", total)
	return total, nil
}

func (uc *ReplayUseCase) writeWithRetry(ctx context.Context, execs []domain.Execution) error {
	// SaveBatch may retain the slice; hand it a copy since batch is reused.
	execs = append([]domain.Execution(nil), execs...)

	var lastErr error
	for i := 0; i < uc.retryCount; i++ {
		err := uc.repo.SaveBatch(ctx, execs)
		if err == nil {
			return nil
		}
		lastErr = err
		uc.logger.Warn("failed to write batch to repository, retrying...", "attempt", i+1, "error", err)
		select {
		case <-time.After(uc.retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

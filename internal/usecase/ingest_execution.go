package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/V4T54L/causeway/internal/adapter/metrics"
	"github.com/V4T54L/causeway/internal/adapter/pii"
	"github.com/V4T54L/causeway/internal/domain"
	"github.com/google/uuid"
)

// IngestExecutionUseCase validates and stores uploaded executions.
type IngestExecutionUseCase struct {
	repo     domain.ExecutionRepository
	wal      domain.WALRepository
	pipeline *Pipeline
	redactor *pii.Redactor
	metrics  *metrics.AnalyzerMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewIngestExecutionUseCase creates a new IngestExecutionUseCase. redactor
// may be nil.
func NewIngestExecutionUseCase(repo domain.ExecutionRepository, wal domain.WALRepository, pipeline *Pipeline, redactor *pii.Redactor, m *metrics.AnalyzerMetrics, logger *slog.Logger) *IngestExecutionUseCase {
	return &IngestExecutionUseCase{
		repo:     repo,
		wal:      wal,
		pipeline: pipeline,
		redactor: redactor,
		metrics:  m,
		logger:   logger.With("component", "ingest"),
		now:      time.Now,
	}
}

// Ingest builds the graph of every execution in lines to prove they are
// valid, redacts sensitive fields and stores the result. When the repository is
// unavailable the execution goes to the WAL instead.
func (uc *IngestExecutionUseCase) Ingest(ctx context.Context, name string, lines []string) (domain.Execution, error) {
	lines = append([]string(nil), lines...)

	execs, err := uc.pipeline.BuildExecutions(lines)
	if err != nil {
		uc.metrics.UploadsTotal.WithLabelValues("error_construction").Inc()
		return domain.Execution{}, err
	}

	var (
		events []domain.LogEvent
		hosts  []string
		nodes  int
	)
	seen := make(map[string]bool)
	for _, e := range execs {
		events = append(events, e.Events...)
		nodes += len(e.Graph.Nodes())
		for _, h := range e.Graph.Hosts() {
			if !seen[h] {
				seen[h] = true
				hosts = append(hosts, h)
			}
		}
	}

	if uc.redactor != nil {
		if n := uc.redactor.RedactLines(lines, events); n > 0 {
			uc.logger.Info("redacted sensitive fields", "events", n)
		}
	}

	exec := domain.Execution{
		ID:         uuid.NewString(),
		Name:       name,
		Lines:      lines,
		Hosts:      hosts,
		NodeCount:  nodes,
		UploadedAt: uc.now().UTC(),
	}

	if err := uc.repo.Save(ctx, exec); err != nil {
		uc.logger.Error("failed to store execution, falling back to WAL", "error", err, "execution_id", exec.ID)
		if walErr := uc.wal.Write(ctx, exec); walErr != nil {
			uc.metrics.UploadsTotal.WithLabelValues("error_storage").Inc()
			return domain.Execution{}, fmt.Errorf("store execution: %w (wal: %v)", err, walErr)
		}
		uc.metrics.WALActive.Set(1)
		uc.metrics.UploadsTotal.WithLabelValues("wal").Inc()
		return exec, nil
	}

	uc.metrics.UploadsTotal.WithLabelValues("stored").Inc()
	uc.logger.Debug("stored execution", "execution_id", exec.ID, "hosts", len(exec.Hosts), "nodes", exec.NodeCount)
	return exec, nil
}

// Get returns a stored execution.
func (uc *IngestExecutionUseCase) Get(ctx context.Context, id string) (domain.Execution, error) {
	return uc.repo.Get(ctx, id)
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/V4T54L/causeway/internal/adapter/pii"
	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/domain/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIngestExecutionUseCase_Ingest(t *testing.T) {
	logger := testLogger()
	redactor := pii.NewRedactor([]string{"user"}, logger)

	t.Run("Successful Ingestion", func(t *testing.T) {
		repo := &mocks.MockExecutionRepository{}
		wal := &mocks.MockWALRepository{}
		m := testMetrics()
		uc := NewIngestExecutionUseCase(repo, wal, testPipeline(t), redactor, m, logger)
		uc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

		input := append([]string(nil), sampleLines...)
		exec, err := uc.Ingest(context.Background(), "run-1", input)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if exec.ID == "" {
			t.Error("expected an execution ID to be generated")
		}
		if diff := cmp.Diff([]string{"a", "b"}, exec.Hosts); diff != "" {
			t.Errorf("hosts mismatch (-want +got):\n%s", diff)
		}
		if exec.NodeCount != 3 {
			t.Errorf("expected 3 nodes, got %d", exec.NodeCount)
		}
		if !exec.UploadedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
			t.Errorf("unexpected upload time %v", exec.UploadedAt)
		}
		if len(repo.Saved) != 1 || repo.Saved[0].ID != exec.ID {
			t.Fatalf("expected the execution to be saved, got %+v", repo.Saved)
		}
		if len(wal.Written) != 0 {
			t.Errorf("expected nothing in the WAL, got %d", len(wal.Written))
		}
		if got := testutil.ToFloat64(m.UploadsTotal.WithLabelValues("stored")); got != 1 {
			t.Errorf("expected 1 stored upload, got %v", got)
		}
	})

	t.Run("PII Redaction", func(t *testing.T) {
		repo := &mocks.MockExecutionRepository{}
		uc := NewIngestExecutionUseCase(repo, &mocks.MockWALRepository{}, testPipeline(t), redactor, testMetrics(), logger)

		input := append([]string(nil), sampleLines...)
		if _, err := uc.Ingest(context.Background(), "", input); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		saved := repo.Saved[0].Lines
		if saved[0] != "send user=[REDACTED]" || saved[2] != "recv user=[REDACTED]" {
			t.Errorf("expected redacted lines, got %q and %q", saved[0], saved[2])
		}
		if saved[4] != "done" || saved[1] != sampleLines[1] {
			t.Errorf("expected other lines untouched, got %q", saved)
		}
		if input[0] != sampleLines[0] {
			t.Errorf("expected the caller's lines to be untouched, got %q", input[0])
		}
	})

	t.Run("Several executions", func(t *testing.T) {
		repo := &mocks.MockExecutionRepository{}
		uc := NewIngestExecutionUseCase(repo, &mocks.MockWALRepository{}, tracedPipeline(t), nil, testMetrics(), logger)

		exec, err := uc.Ingest(context.Background(), "traces", tracedLines)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, exec.Hosts); diff != "" {
			t.Errorf("hosts mismatch (-want +got):\n%s", diff)
		}
		if exec.NodeCount != 6 {
			t.Errorf("expected 6 nodes, got %d", exec.NodeCount)
		}
		if diff := cmp.Diff(tracedLines, repo.Saved[0].Lines); diff != "" {
			t.Errorf("expected the delimiters to be stored (-want +got):\n%s", diff)
		}
	})

	t.Run("Construction Error", func(t *testing.T) {
		repo := &mocks.MockExecutionRepository{}
		m := testMetrics()
		uc := NewIngestExecutionUseCase(repo, &mocks.MockWALRepository{}, testPipeline(t), nil, m, logger)

		_, err := uc.Ingest(context.Background(), "", []string{"lonely"})
		var ce *domain.ConstructionError
		if !errors.As(err, &ce) {
			t.Fatalf("expected a construction error, got %v", err)
		}
		if len(repo.Saved) != 0 {
			t.Error("expected nothing to be saved")
		}
		if got := testutil.ToFloat64(m.UploadsTotal.WithLabelValues("error_construction")); got != 1 {
			t.Errorf("expected 1 construction error, got %v", got)
		}
	})

	t.Run("Repository Error falls back to WAL", func(t *testing.T) {
		repo := &mocks.MockExecutionRepository{SaveErr: errors.New("database is down")}
		wal := &mocks.MockWALRepository{}
		m := testMetrics()
		uc := NewIngestExecutionUseCase(repo, wal, testPipeline(t), nil, m, logger)

		exec, err := uc.Ingest(context.Background(), "", sampleLines)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(wal.Written) != 1 || wal.Written[0].ID != exec.ID {
			t.Fatalf("expected the execution in the WAL, got %+v", wal.Written)
		}
		if got := testutil.ToFloat64(m.WALActive); got != 1 {
			t.Errorf("expected WAL to be active, got %v", got)
		}
		if got := testutil.ToFloat64(m.UploadsTotal.WithLabelValues("wal")); got != 1 {
			t.Errorf("expected 1 WAL upload, got %v", got)
		}
	})

	t.Run("Repository and WAL Error", func(t *testing.T) {
		repo := &mocks.MockExecutionRepository{SaveErr: errors.New("database is down")}
		wal := &mocks.MockWALRepository{WriteErr: errors.New("disk full")}
		uc := NewIngestExecutionUseCase(repo, wal, testPipeline(t), nil, testMetrics(), logger)

		if _, err := uc.Ingest(context.Background(), "", sampleLines); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})
}

func TestIngestExecutionUseCase_Get(t *testing.T) {
	repo := &mocks.MockExecutionRepository{Saved: []domain.Execution{{ID: "x"}}}
	uc := NewIngestExecutionUseCase(repo, &mocks.MockWALRepository{}, testPipeline(t), nil, testMetrics(), testLogger())

	if _, err := uc.Get(context.Background(), "x"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := uc.Get(context.Background(), "y"); !errors.Is(err, domain.ErrExecutionNotFound) {
		t.Errorf("expected ErrExecutionNotFound, got %v", err)
	}
}

package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/transform"
	"github.com/V4T54L/causeway/internal/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockExecutionIngester is a mock implementation of ExecutionIngester.
type MockExecutionIngester struct {
	IngestFunc func(ctx context.Context, name string, lines []string) (domain.Execution, error)
	GetFunc    func(ctx context.Context, id string) (domain.Execution, error)
}

func (m *MockExecutionIngester) Ingest(ctx context.Context, name string, lines []string) (domain.Execution, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, name, lines)
	}
	return domain.Execution{}, nil
}

func (m *MockExecutionIngester) Get(ctx context.Context, id string) (domain.Execution, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return domain.Execution{}, domain.ErrExecutionNotFound
}

// MockViewAnalyzer is a mock implementation of ViewAnalyzer.
type MockViewAnalyzer struct {
	ViewFunc   func(ctx context.Context, id string, req usecase.ViewRequest) ([]byte, error)
	RenderFunc func(lines []string, req usecase.ViewRequest) (transform.Rendering, error)
}

func (m *MockViewAnalyzer) View(ctx context.Context, id string, req usecase.ViewRequest) ([]byte, error) {
	if m.ViewFunc != nil {
		return m.ViewFunc(ctx, id, req)
	}
	return []byte("{}"), nil
}

func (m *MockViewAnalyzer) Render(lines []string, req usecase.ViewRequest) (transform.Rendering, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(lines, req)
	}
	return transform.Rendering{}, nil
}

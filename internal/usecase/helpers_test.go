package usecase

import (
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/causeway/internal/adapter/metrics"
	"github.com/V4T54L/causeway/internal/logparser"
	"github.com/prometheus/client_golang/prometheus"
)

// sampleLines is a two host execution: a sends to b, then b logs locally.
var sampleLines = []string{
	"send user=alice",
	`a {"a":1}`,
	"recv user=bob",
	`b {"a":1,"b":1}`,
	"done",
	`b {"a":1,"b":2}`,
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.AnalyzerMetrics {
	return metrics.NewAnalyzerMetrics(prometheus.NewRegistry())
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	re, err := logparser.CompileFieldPattern(`user=(?P<user>\S+)`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return NewPipeline(logparser.New(logparser.WithFieldPattern(re)), true)
}

package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/V4T54L/causeway/internal/adapter/metrics"
	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/transform"
)

// AnalyzeViewUseCase renders transformed views of executions.
type AnalyzeViewUseCase struct {
	repo     domain.ExecutionRepository
	cache    domain.ViewCache
	pipeline *Pipeline
	metrics  *metrics.AnalyzerMetrics
	logger   *slog.Logger
}

func NewAnalyzeViewUseCase(repo domain.ExecutionRepository, cache domain.ViewCache, pipeline *Pipeline, m *metrics.AnalyzerMetrics, logger *slog.Logger) *AnalyzeViewUseCase {
	return &AnalyzeViewUseCase{
		repo:     repo,
		cache:    cache,
		pipeline: pipeline,
		metrics:  m,
		logger:   logger.With("component", "analyze"),
	}
}

// CacheKey identifies the rendering of req over the execution id.
func CacheKey(id string, req ViewRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode view request: %w", err)
	}
	sum := sha256.New()
	sum.Write([]byte(id))
	sum.Write([]byte{0})
	sum.Write(b)
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// View returns the JSON encoded rendering of a stored execution, served from
// the cache when possible.
func (uc *AnalyzeViewUseCase) View(ctx context.Context, id string, req ViewRequest) ([]byte, error) {
	key, err := CacheKey(id, req)
	if err != nil {
		return nil, err
	}

	cached, err := uc.cache.Get(ctx, key)
	if err == nil {
		uc.metrics.ViewCacheHits.Inc()
		uc.metrics.ViewsTotal.WithLabelValues("ok").Inc()
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		uc.logger.Warn("view cache lookup failed", "error", err, "execution_id", id)
	}
	uc.metrics.ViewCacheMisses.Inc()

	exec, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r, err := uc.Render(exec.Lines, req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode rendering: %w", err)
	}

	if err := uc.cache.Set(ctx, key, body); err != nil {
		uc.logger.Warn("failed to cache view", "error", err, "execution_id", id)
	}
	return body, nil
}

// Render runs the full pipeline over lines without touching storage.
func (uc *AnalyzeViewUseCase) Render(lines []string, req ViewRequest) (transform.Rendering, error) {
	start := time.Now()
	defer func() { uc.metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	v, err := uc.pipeline.View(lines, req)
	if err != nil {
		uc.metrics.ViewsTotal.WithLabelValues(viewStatus(err)).Inc()
		return transform.Rendering{}, err
	}

	r := v.Render()
	uc.metrics.MotifsFound.Add(float64(len(r.Motifs)))
	uc.metrics.ViewsTotal.WithLabelValues("ok").Inc()
	return r, nil
}

func viewStatus(err error) string {
	var ce *domain.ConstructionError
	switch {
	case errors.As(err, &ce):
		return "error_construction"
	case IsQueryError(err):
		return "error_query"
	default:
		return "error_transform"
	}
}

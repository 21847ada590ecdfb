package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/V4T54L/causeway/internal/adapter/metrics"
)

type cacheEntry struct {
	valid     bool
	expiresAt time.Time
}

// APIKeyRepository implements domain.APIKeyRepository on PostgreSQL, with an
// in-memory cache in front of the api_keys table.
type APIKeyRepository struct {
	db       *sql.DB
	logger   *slog.Logger
	cacheTTL time.Duration
	metrics  *metrics.AnalyzerMetrics

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewAPIKeyRepository caches lookups for cacheTTL. m may be nil.
func NewAPIKeyRepository(db *sql.DB, logger *slog.Logger, cacheTTL time.Duration, m *metrics.AnalyzerMetrics) *APIKeyRepository {
	return &APIKeyRepository{
		db:       db,
		logger:   logger.With("component", "apikey_repository"),
		cacheTTL: cacheTTL,
		metrics:  m,
		cache:    make(map[string]cacheEntry),
	}
}

func (r *APIKeyRepository) cached(key string, now time.Time) (bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[key]
	if !ok || !now.Before(e.expiresAt) {
		return false, false
	}
	return e.valid, true
}

// IsValid reports whether key exists, is active and has not expired. Database
// failures are not cached.
func (r *APIKeyRepository) IsValid(ctx context.Context, key string) (bool, error) {
	if valid, ok := r.cached(key, time.Now()); ok {
		if r.metrics != nil {
			r.metrics.APIKeyCacheHits.Inc()
		}
		return valid, nil
	}
	if r.metrics != nil {
		r.metrics.APIKeyCacheMisses.Inc()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another request may have filled the entry while we waited
	if e, ok := r.cache[key]; ok && time.Now().Before(e.expiresAt) {
		return e.valid, nil
	}

	var valid bool
	query := `SELECT EXISTS(SELECT 1 FROM api_keys WHERE key = $1 AND is_active = true AND (expires_at IS NULL OR expires_at > NOW()))`
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&valid); err != nil {
		r.logger.Error("failed to validate API key in database", "error", err)
		return false, fmt.Errorf("validate api key: %w", err)
	}
	r.cache[key] = cacheEntry{valid: valid, expiresAt: time.Now().Add(r.cacheTTL)}
	return valid, nil
}

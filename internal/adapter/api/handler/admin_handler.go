package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

// Replayer drains the WAL on demand.
type Replayer interface {
	Replay(ctx context.Context) (int, error)
}

// WALSizer reports how much data is parked in the WAL.
type WALSizer interface {
	Size() (int64, error)
}

// AdminHandler serves operational endpoints: dependency health and WAL
// inspection and replay.
type AdminHandler struct {
	checks   map[string]HealthCheck
	replayer Replayer
	wal      WALSizer
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. replayer and wal may be nil,
// in which case the WAL endpoints answer 404.
func NewAdminHandler(checks map[string]HealthCheck, replayer Replayer, wal WALSizer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{checks: checks, replayer: replayer, wal: wal, logger: logger}
}

// HealthCheck runs every dependency check and reports 503 if any fails.
// GET /health
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			results[name] = err.Error()
			status = "degraded"
			continue
		}
		results[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondWithJSON(w, h.logger, code, map[string]any{"status": status, "checks": results})
}

// WALStatus reports the bytes held in the WAL.
// GET /admin/wal
func (h *AdminHandler) WALStatus(w http.ResponseWriter, r *http.Request) {
	if h.wal == nil {
		http.NotFound(w, r)
		return
	}
	size, err := h.wal.Size()
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]int64{"size_bytes": size})
}

// ReplayWAL drains the WAL into the database immediately.
// POST /admin/wal/replay
func (h *AdminHandler) ReplayWAL(w http.ResponseWriter, r *http.Request) {
	if h.replayer == nil {
		http.NotFound(w, r)
		return
	}
	n, err := h.replayer.Replay(r.Context())
	if err != nil {
		h.logger.Error("manual wal replay failed", "error", err, "replayed", n)
		respondWithJSON(w, h.logger, http.StatusBadGateway, map[string]any{"error": err.Error(), "replayed": n})
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]int{"replayed": n})
}
